package model

import "time"

// Role 用户角色（封闭枚举，避免散落的字符串比较）
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
)

// ParseRole 解析角色字符串，未知值返回 false
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleManager:
		return Role(s), true
	}
	return "", false
}

// Valid 角色是否合法
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// CanManage 是否具备审批能力（查看全部请求、审批、查员工目录）
func (r Role) CanManage() bool {
	return r == RoleManager
}

// User 用户
type User struct {
	ID           string    `json:"_id" bson:"_id" db:"id"`
	UserName     string    `json:"userName" bson:"user_name" db:"user_name"`
	Email        string    `json:"email" bson:"email" db:"email"`
	Mobile       string    `json:"mobile" bson:"mobile" db:"mobile"`
	PasswordHash string    `json:"-" bson:"password_hash" db:"password_hash"` // never expose in JSON
	Role         Role      `json:"role" bson:"role" db:"role"`
	CreatedOn    time.Time `json:"createdOn" bson:"created_on" db:"created_on"`
}

// UserRef 列表响应中内嵌的用户摘要（对应原始接口的 populate 输出）
type UserRef struct {
	ID       string `json:"_id" bson:"_id"`
	UserName string `json:"userName" bson:"user_name"`
	Email    string `json:"email" bson:"email"`
	Role     Role   `json:"role" bson:"role"`
}

// Ref 返回用户摘要
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, UserName: u.UserName, Email: u.Email, Role: u.Role}
}
