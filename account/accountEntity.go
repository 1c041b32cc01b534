package account

import "github.com/fundwit/go-commons/types"

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleBuilder   = "builder"
	RoleInspector = "inspector"
)

type User struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	Secret string   `json:"-"`

	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
