package api

import (
	"github.com/google/uuid"

	"github.com/rpupo63/blog-platform-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler healthHandler
	userHandler   userHandler
	blogHandler   blogHandler
	adminHandler  adminHandler
}

// UserDetail is the identity snapshot returned with an access token
type UserDetail struct {
	UserID   uuid.UUID   `json:"userID"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

func userDetailOf(u *models.User) UserDetail {
	return UserDetail{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	Status      string     `json:"status" example:"success"`
	Message     string     `json:"message"`
	AccessToken string     `json:"accessToken"`
	UserDetail  UserDetail `json:"userDetail"`
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Status  string `json:"status" example:"failure"`
	Message string `json:"message" example:"access denied"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}
