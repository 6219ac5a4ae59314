package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID      `json:"id"`
	StudentID      string         `json:"student_id"`
	FullName       string         `json:"full_name"`
	Department     *string        `json:"department,omitempty"`
	Mobile         *string        `json:"mobile,omitempty"`
	Email          *string        `json:"email,omitempty"`
	Role           enums.UserRole `json:"role"`
	ProfileImgURL  *string        `json:"profile_img_url,omitempty"`
	CurrentPoints  int            `json:"current_points"`
	LifetimePoints int            `json:"lifetime_points"`
	TickType       enums.TickType `json:"tick_type"`
	JoinedAt       time.Time      `json:"joined_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	StudentID    string
	FullName     string
	Department   *string
	Mobile       *string
	Email        *string
	PasswordHash string
	Role         enums.UserRole
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:             u.ID,
		StudentID:      u.StudentID,
		FullName:       u.FullName,
		Department:     u.Department,
		Mobile:         u.Mobile,
		Email:          u.Email,
		Role:           u.Role,
		ProfileImgURL:  u.ProfileImgURL,
		CurrentPoints:  u.CurrentPoints,
		LifetimePoints: u.LifetimePoints,
		TickType:       u.TickType,
		JoinedAt:       u.JoinedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.UserRoleStudent
	}

	return &models.User{
		StudentID:    c.StudentID,
		FullName:     c.FullName,
		Department:   c.Department,
		Mobile:       c.Mobile,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		TickType:     enums.TickTypeNone,
	}
}
