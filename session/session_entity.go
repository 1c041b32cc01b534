package session

import (
	"context"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string      `json:"token"`
	Identity Identity    `json:"identity"`
	Perms    Permissions `json:"perms"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (i Identity) DisplayName() string {
	if i.Nickname != "" {
		return i.Nickname
	}
	return i.Name
}

type Permissions []string

func (p Permissions) HasRole(role string) bool {
	for _, r := range p {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Session) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if s.Perms.HasRole(role) {
			return true
		}
	}
	return false
}

func (s *Session) Clone() Session {
	c := *s
	c.Perms = append(Permissions{}, s.Perms...)
	return c
}
