package model

import (
	"time"
)

// 员工角色
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCashier, RoleKitchen:
		return true
	}
	return false
}

// User 员工账号
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" gorm:"unique"`
	Username     string    `json:"username" db:"username" gorm:"unique"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
