package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TeamLoginRequest accepts loginCode or login_code.
type TeamLoginRequest struct {
	LoginCode      string `json:"loginCode"`
	LoginCodeAlias string `json:"login_code"`
}

func (r TeamLoginRequest) Code() string {
	if r.LoginCode != "" {
		return r.LoginCode
	}
	return r.LoginCodeAlias
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TeamAuthResponse struct {
	Member      TeamMemberResponse `json:"member"`
	AccessToken string             `json:"accessToken"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// PrincipalResponse describes the caller of /auth/me.
type PrincipalResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ReadOnly bool   `json:"readOnly"`
}

// ============================================
// Client DTOs
// ============================================

// ClientRequest serves both create and update. Absent fields stay nil.
type ClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Email   *string `json:"email" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
}

type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     string    `json:"phone"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================
// Chantier DTOs
// ============================================

// ImageList is a list of image references sent either as a JSON array or
// as a string holding a JSON-encoded array.
type ImageList []string

func (l *ImageList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			*l = ImageList{}
			return nil
		}
		b = []byte(raw)
	}
	var images []string
	if err := json.Unmarshal(b, &images); err != nil {
		return fmt.Errorf("images must be a list of strings")
	}
	if images == nil {
		images = []string{}
	}
	*l = images
	return nil
}

type ChantierRequest struct {
	Name      *string    `json:"name" binding:"omitempty,max=255"`
	ClientID  *string    `json:"clientId"`
	StartDate *string    `json:"startDate"`
	Duration  *string    `json:"duration" binding:"omitempty,max=100"`
	Images    *ImageList `json:"images"`
	Status    *string    `json:"status"`
}

type ChantierResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ClientID   string    `json:"clientId"`
	ClientName string    `json:"clientName"`
	StartDate  string    `json:"startDate"`
	Duration   string    `json:"duration"`
	Images     []string  `json:"images"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ============================================
// Team Member DTOs
// ============================================

type TeamMemberRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=255"`
	Role           *string `json:"role" binding:"omitempty,max=255"`
	Email          *string `json:"email" binding:"omitempty,max=255"`
	Phone          *string `json:"phone"`
	Status         *string `json:"status"`
	LoginCode      *string `json:"loginCode"`
	LoginCodeAlias *string `json:"login_code"`
	UserID         *string `json:"userId"`
}

// Code returns loginCode, falling back to login_code.
func (r TeamMemberRequest) Code() *string {
	if r.LoginCode != nil {
		return r.LoginCode
	}
	return r.LoginCodeAlias
}

type TeamMemberResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone"`
	Status         string    `json:"status"`
	LoginCode      string    `json:"loginCode,omitempty"`
	LoginCodeAlias string    `json:"login_code,omitempty"`
	UserID         *string   `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ============================================
// Assignment DTOs
// ============================================

type AssignmentRequest struct {
	TeamMemberID string `json:"teamMemberId"`
}

type AssignmentResponse struct {
	ID           string              `json:"id"`
	ChantierID   string              `json:"chantierId"`
	TeamMemberID string              `json:"teamMemberId"`
	CreatedAt    time.Time           `json:"createdAt"`
	TeamMember   *TeamMemberResponse `json:"teamMember"`
}

// ============================================
// Planning DTOs
// ============================================

type PlanningDay struct {
	Date           string   `json:"date"`
	IsCurrentMonth bool     `json:"isCurrentMonth"`
	IsToday        bool     `json:"isToday"`
	ChantierIDs    []string `json:"chantierIds"`
}

type PlanningChantier struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName"`
	Status     string `json:"status"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Duration   string `json:"duration"`
}

type PlanningResponse struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	Days      []PlanningDay      `json:"days"`
	Chantiers []PlanningChantier `json:"chantiers"`
}

// ============================================
// Quote DTOs
// ============================================

type QuotePreviewResponse struct {
	Subtotal     string    `json:"subtotal"`
	Tax          string    `json:"tax"`
	Total        string    `json:"total"`
	TaxRate      string    `json:"taxRate"`
	ValidityDays int       `json:"validityDays"`
	IssuedAt     time.Time `json:"issuedAt"`
	DueDate      time.Time `json:"dueDate"`
	FileName     string    `json:"fileName"`
}

type QuoteEmailResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Sent    bool   `json:"sent"`
}
