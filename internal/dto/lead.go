package dto

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type CreateLeadRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,min=7,max=20"`
	Company  string `json:"company" binding:"omitempty,max=100"`
	Interest string `json:"interest" binding:"required,max=100"`
	Source   string `json:"source" binding:"omitempty,max=50"`
	Message  string `json:"message" binding:"omitempty,max=2000"`
}

type UpdateLeadStatusRequest struct {
	Status model.LeadStatus `json:"status" binding:"required,oneof=NEW CONTACTED CONVERTED REJECTED"`
}

type LeadResponse struct {
	ID        string           `json:"id"`
	FullName  string           `json:"fullName"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Company   string           `json:"company,omitempty"`
	Interest  string           `json:"interest"`
	Source    string           `json:"source"`
	Message   string           `json:"message,omitempty"`
	Status    model.LeadStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func NewLeadResponse(l *model.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID.Hex(),
		FullName:  l.FullName,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Interest:  l.Interest,
		Source:    l.Source,
		Message:   l.Message,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
