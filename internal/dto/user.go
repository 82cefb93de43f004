package dto

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type CreateUserRequest struct {
	FirstName string    `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string    `json:"lastName" binding:"required,min=2,max=50"`
	Email     string    `json:"email" binding:"required,email"`
	Phone     string    `json:"phone" binding:"omitempty,min=10,max=15"`
	Password  string    `json:"password" binding:"required,min=8,max=100"`
	Role      string    `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	Location  []float64 `json:"location" binding:"omitempty,geopoint"`
}

type UpdateUserRequest struct {
	FirstName *string   `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName  *string   `json:"lastName" binding:"omitempty,min=2,max=50"`
	Phone     *string   `json:"phone" binding:"omitempty,min=10,max=15"`
	Location  []float64 `json:"location" binding:"omitempty,geopoint"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=100,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

type UserResponse struct {
	ID            string           `json:"id"`
	FirstName     string           `json:"firstName"`
	LastName      string           `json:"lastName"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone,omitempty"`
	Role          model.UserRole   `json:"role"`
	Status        model.UserStatus `json:"status"`
	Location      *model.GeoPoint  `json:"location,omitempty"`
	EmailVerified bool             `json:"emailVerified"`
	LastLogin     *time.Time       `json:"lastLogin,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID.Hex(),
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		Status:        u.Status,
		Location:      u.Location,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserSummary counts users per status for the current filter.
type UserSummary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}
