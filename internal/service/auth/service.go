// Package auth issues operator access tokens.
package auth

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/pkg/errorx"
	"sms_campaign_server/pkg/util/jwt"
)

// Service checks operator credentials against the configured bcrypt hash.
type Service struct {
	operator     string
	passwordHash []byte
	expiresIn    int // seconds
}

// NewAuthService creates the service. jwt.Init must have been called.
func NewAuthService(cfg config.JWTConfig) *Service {
	return &Service{
		operator:     cfg.OperatorName,
		passwordHash: []byte(cfg.OperatorPasswordHash),
		expiresIn:    cfg.AccessTokenExpiry * 60,
	}
}

// Login returns an access token for valid credentials.
func (s *Service) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	if len(s.passwordHash) == 0 {
		return nil, errorx.New(errorx.CodeUnauthorized, "operator login is not configured")
	}
	nameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.operator)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil || !nameOK {
		zap.L().Warn("operator login rejected", zap.String("username", req.Username))
		return nil, errorx.New(errorx.CodeUnauthorized, "invalid username or password")
	}

	token, err := jwt.GenerateAccessToken(s.operator)
	if err != nil {
		zap.L().Error("sign access token", zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "sign access token")
	}
	return &respond.LoginRespond{AccessToken: token, TokenType: "Bearer", ExpiresIn: s.expiresIn}, nil
}
