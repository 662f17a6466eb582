package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the workflow roles, ordered by privilege:
// instructor < chairperson < principal. Admin maintains configuration only.
type UserRole string

const (
	RoleInstructor  UserRole = "INSTRUCTOR"
	RoleChairperson UserRole = "CHAIRPERSON"
	RolePrincipal   UserRole = "PRINCIPAL"
	RoleAdmin       UserRole = "ADMIN"
)

// Actor identifies who performs a workflow transition. It is passed
// explicitly into every core operation; the engine never reads auth state
// from anywhere else.
type Actor struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"department_id,omitempty"`
}

// JWTClaims represents the JWT payload issued by the external auth system.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	Role         UserRole `json:"role"`
	DepartmentID string   `json:"department_id,omitempty"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor extracts the workflow actor from validated claims.
func (c *JWTClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role, DepartmentID: c.DepartmentID}
}
