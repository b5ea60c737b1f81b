package dto

import "github.com/google/uuid"

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration; length rules live in the service
type RegisterRequest struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"notblank"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Username string `json:"username" binding:"notblank"`
	Password string `json:"password" binding:"notblank"`
}

// CredentialMessages: any missing credential reports the same message
var CredentialMessages = map[string]string{
	"Username": "Username and password are required",
	"Password": "Username and password are required",
}

// RegisterResponse: response payload after successful registration
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Message  string    `json:"message"`
}

// LoginResponse: response payload after successful login
type LoginResponse struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	UserID   uuid.UUID `json:"userId"`
	Message  string    `json:"message"`
}
