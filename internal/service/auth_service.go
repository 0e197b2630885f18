package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles researcher and participant authentication
type AuthService struct {
	researcherUser string
	researcherPass string
	jwtSecret      []byte
}

// NewAuthService creates a new auth service
func NewAuthService(researcherUser, researcherPass, jwtSecret string) *AuthService {
	return &AuthService{
		researcherUser: researcherUser,
		researcherPass: researcherPass,
		jwtSecret:      []byte(jwtSecret),
	}
}

// Login validates researcher credentials and returns a token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.researcherUser || password != s.researcherPass {
		return nil, ErrInvalidCredentials
	}

	researcherID := "r_" + uuid.New().String()[:8]

	claims := &model.ResearcherClaims{
		ResearcherID: researcherID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:        tokenString,
		ResearcherID: researcherID,
	}, nil
}

// ValidateResearcherToken validates a researcher JWT and returns claims
func (s *AuthService) ValidateResearcherToken(tokenString string) (*model.ResearcherClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ResearcherClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ResearcherClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateParticipantToken creates a session-scoped token for a participant
func (s *AuthService) GenerateParticipantToken(sessionID string) (string, error) {
	claims := &model.ParticipantClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateParticipantToken validates a participant JWT and returns claims
func (s *AuthService) ValidateParticipantToken(tokenString string) (*model.ParticipantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ParticipantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ParticipantClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
