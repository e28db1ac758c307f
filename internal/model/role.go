package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTA       Role = "ta"
	RoleStudent  Role = "student"
	RoleParent   Role = "parent"
	RoleLecturer Role = "lecturer"
)

// Actor пользователь, выполняющий действие
type Actor struct {
	Role   Role
	UserID string
	Name   string
}
