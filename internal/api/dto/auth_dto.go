package dto

import "time"

// StaffLoginRequest carries staff credentials.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse carries an issued access token.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	StaffID   string    `json:"staff_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
}
