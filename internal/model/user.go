package model

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMentor Role = "MENTOR"
	RoleMentee Role = "MENTEE"
)

var AllRoles = []Role{RoleAdmin, RoleMentor, RoleMentee}

func (r Role) IsValid() bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
