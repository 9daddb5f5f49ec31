package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an employee account. TotalSales and TotalRevenue are optional
// performance aggregates; zero when the backend does not send them.
type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Role         Role            `json:"role"`
	EmployeeID   string          `json:"employee_id"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Active       bool            `json:"is_active"`
	DateJoined   time.Time       `json:"date_joined"`
	TotalSales   int             `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// UserRequest is the create/update payload for /users/. Password is only
// required on create.
type UserRequest struct {
	Username   string `json:"username"           validate:"required,min=1,max=150"`
	Email      string `json:"email"              validate:"omitempty,email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Role       Role   `json:"role"               validate:"required,oneof=SELLER MANAGER BOSS"`
	EmployeeID string `json:"employee_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Password   string `json:"password,omitempty" validate:"omitempty,min=8"`
	Active     bool   `json:"is_active"`
}

// ResetPasswordRequest sets a new password without confirming the old one.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserStatistics is the body of GET /users/statistics/.
type UserStatistics struct {
	TotalUsers    int          `json:"total_users"`
	ActiveUsers   int          `json:"active_users"`
	ByRole        map[Role]int `json:"by_role"`
	RecentSignups []User       `json:"recent_signups"`
}

// Credentials for POST /auth/login/.
type Credentials struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

// LoginResponse is the body returned by POST /auth/login/.
type LoginResponse struct {
	Access string `json:"access"`
	User   User   `json:"user"`
}

// HealthStatus is the body of GET /health/.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
