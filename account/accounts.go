package account

import (
	"crypto/sha256"
	"encoding/hex"
	"snagline/bizerror"
	"snagline/common"
	"snagline/persistence"
	"snagline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	LoadPermFunc   = LoadPerm
	CreateUserFunc = CreateUser
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// LoadPerm resolves a user's roles. Admin implies every role.
func LoadPerm(userId types.ID) session.Permissions {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	if err := db.Model(&User{}).Where(&User{ID: userId}).Scan(&user).Error; err != nil {
		common.Log.Warnf("failed to load permissions of user %v: %v", userId, err)
		return session.Permissions{}
	}
	if user.Role == RoleAdmin {
		return session.Permissions{RoleAdmin, RoleDeveloper, RoleBuilder, RoleInspector}
	}
	return session.Permissions{user.Role}
}

// BootstrapAdminUser creates the initial admin account on an empty user table.
func BootstrapAdminUser(db *gorm.DB, secret string) error {
	count := 0
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin := User{ID: common.NextId(userIdWorker), Name: "admin", Nickname: "Administrator",
		Secret: HashSha256(secret), Role: RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	common.Log.Warn("bootstrap admin user created, change its secret")
	return nil
}

func CreateUser(c *UserCreation, sec *session.Session) (*UserInfo, error) {
	if !sec.HasAnyRole(RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	user := User{ID: common.NextId(userIdWorker), Name: c.Name, Nickname: c.Nickname,
		Secret: HashSha256(c.Secret), Role: c.Role}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Context).Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname, Role: user.Role}, nil
}

type UserCreation struct {
	Name     string `json:"name" binding:"required,lte=32"`
	Secret   string `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Role     string `json:"role" binding:"required,oneof=admin developer builder inspector"`
}
