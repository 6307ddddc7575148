package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleCoach  Role = "Coach"
	RoleParent Role = "Parent"
	RolePlayer Role = "Player"
	RoleAdmin  Role = "Admin"
)

var AllRoles = []Role{RoleCoach, RoleParent, RolePlayer, RoleAdmin}

// ParseRole accepts any casing and returns the canonical value.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", s)
}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func ParseGender(s string) (Gender, error) {
	s = strings.TrimSpace(s)
	for _, g := range []Gender{GenderMale, GenderFemale, GenderOther} {
		if strings.EqualFold(s, string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid gender %q", s)
}

type User struct {
	ID           string     `db:"id" json:"_id"`
	Username     string     `db:"username" json:"username"`
	Surname      string     `db:"surname" json:"surname"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	UserRole     Role       `db:"user_role" json:"userRole"`
	IsVerified   bool       `db:"is_verified" json:"isVerified"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	CountryCode  string     `db:"country_code" json:"countryCode"`
	MobileNumber string     `db:"mobile_number" json:"mobileNumber"`
	Avatar       *string    `db:"avatar" json:"avatar"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender       *Gender    `db:"gender" json:"gender,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.UserRole == r {
			return true
		}
	}
	return false
}

// Summary is the role-safe projection embedded in other resources.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Surname:  u.Surname,
		Email:    u.Email,
		Avatar:   u.Avatar,
		UserRole: u.UserRole,
	}
}

type UserSummary struct {
	ID       string  `db:"id" json:"_id"`
	Username string  `db:"username" json:"username"`
	Surname  string  `db:"surname" json:"surname"`
	Email    string  `db:"email" json:"email"`
	Avatar   *string `db:"avatar" json:"avatar"`
	UserRole Role    `db:"user_role" json:"userRole"`
}

// UserFiles are the stored uploads a user's cascade delete leaves behind.
type UserFiles struct {
	BlogThumbnails []string
	Videos         []string
	TeamPhotos     []string
}

// UserFilter drives the admin listing by role.
type UserFilter struct {
	Role       Role
	IsActive   *bool
	SearchText string
	Page       PageQuery
}
