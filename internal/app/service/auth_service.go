package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/amaretto/amaretto-backend/config"
	"github.com/amaretto/amaretto-backend/pkg/logger"
	"github.com/amaretto/amaretto-backend/pkg/util"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	AdminSubject = "admin"
	AdminRole    = "admin"
)

// AdminSession is an issued console session
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type AuthService interface {
	Login(username, password string) (*AdminSession, error)
	ValidateSession(token string) (*util.Claims, error)
	// Logout revokes token for the rest of its lifetime. Tokens that do not
	// validate are ignored.
	Logout(ctx context.Context, token string) error
	SessionExpiry() time.Duration
}

type authService struct {
	username     string
	password     string
	passwordHash string
	jwtSecret    string
	expiry       time.Duration
	revocations  SessionRevocations
}

func NewAuthService(cfg config.AdminConfig, revocations SessionRevocations) AuthService {
	if revocations == nil {
		revocations = NewMemoryRevocations()
	}
	return &authService{
		revocations:  revocations,
		username:     cfg.Username,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
		jwtSecret:    cfg.JWTSecret,
		expiry:       cfg.SessionExpiry,
	}
}

func (s *authService) Login(username, password string) (*AdminSession, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"username": username,
	})

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := util.MatchCredential(s.passwordHash, s.password, password)
	if !userOK || !passOK {
		logger.Warn("Admin login failed: invalid credentials", map[string]interface{}{
			"username": username,
		})
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := util.GenerateToken(AdminSubject, AdminRole, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to issue admin session", err)
		return nil, err
	}

	logger.Info("Admin logged in", map[string]interface{}{
		"expires_at": expiresAt,
	})
	return &AdminSession{Token: token, ExpiresAt: expiresAt, Username: s.username}, nil
}

func (s *authService) ValidateSession(token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.Role != AdminRole {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, token, time.Until(claims.ExpiresAt.Time)); err != nil {
		logger.Error("Failed to revoke admin session", err)
		return err
	}
	logger.Info("Admin session revoked", map[string]interface{}{
		"expires_at": claims.ExpiresAt.Time,
	})
	return nil
}

func (s *authService) SessionExpiry() time.Duration {
	return s.expiry
}
