package model

import "github.com/golang-jwt/jwt/v5"

// ResearcherClaims are JWT claims for researcher authentication
type ResearcherClaims struct {
	ResearcherID string `json:"researcherId"`
	jwt.RegisteredClaims
}

// ParticipantClaims are JWT claims for session-scoped participant tokens
type ParticipantClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for researcher login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token        string `json:"token"`
	ResearcherID string `json:"researcherId"`
}
