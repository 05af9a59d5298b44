package entity

import (
	"github.com/openisle/backend/pkg/enum"
)

type Role string

var (
	RoleUser  = enum.New(Role("user"))
	RoleAdmin = enum.New(Role("admin"))
)

type User struct {
	Base

	Name  string `gorm:"unique"`
	Email string
	Role  Role

	// Points is derived from the sum of non-tombstoned point history
	// entries. Only the point domain writes it.
	Points int

	DisabledEmailTypes Array[string]
}
