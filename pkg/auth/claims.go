package auth

import (
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	StudentID  string
	Role       enums.UserRole
	Department string
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	StudentID  string         `json:"student_id"`
	Role       enums.UserRole `json:"role"`
	Department string         `json:"department,omitempty"`
	jwt.RegisteredClaims
}
