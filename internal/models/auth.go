package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole distinguishes the two access scopes.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// TeacherLoginRequest authenticates a homeroom teacher by class.
type TeacherLoginRequest struct {
	ClassLevel string `json:"classLevel" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AdminLoginRequest authenticates the administrator.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest updates a teacher's class password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UpdateProfileRequest writes the teacher identity into school settings.
// An omitted photo keeps the stored one.
type UpdateProfileRequest struct {
	Name         string  `json:"name" validate:"required"`
	NIP          string  `json:"nip"`
	SignatureURL string  `json:"signatureUrl"`
	PhotoURL     *string `json:"photoUrl"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	Username   string   `json:"username"`
	Name       string   `json:"name"`
	Role       UserRole `json:"role"`
	ClassLevel string   `json:"classLevel,omitempty"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens. ClassLevel is
// empty for administrators.
type JWTClaims struct {
	Role       UserRole `json:"role"`
	ClassLevel string   `json:"class_level,omitempty"`
	Name       string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}
