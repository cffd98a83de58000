package auth

import (
	"context"
	"testing"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/pkg/errorx"
	"sms_campaign_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T, password string) *Service {
	t.Helper()
	jwt.Init("test-secret", 30)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.JWTConfig{
		OperatorName:         "admin",
		OperatorPasswordHash: string(hash),
		AccessTokenExpiry:    30,
	})
}

func TestLoginIssuesToken(t *testing.T) {
	svc := newService(t, "s3cret-pass")
	rsp, err := svc.Login(context.Background(), request.LoginRequest{Username: "admin", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", rsp.TokenType)
	assert.Equal(t, 1800, rsp.ExpiresIn)

	claims, err := jwt.ParseToken(rsp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Operator)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t, "s3cret-pass")
	ctx := context.Background()

	_, err := svc.Login(ctx, request.LoginRequest{Username: "admin", Password: "wrong-pass"})
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))

	_, err = svc.Login(ctx, request.LoginRequest{Username: "root", Password: "s3cret-pass"})
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))
}

func TestLoginWithoutConfiguredHash(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{OperatorName: "admin"})
	_, err := svc.Login(context.Background(), request.LoginRequest{Username: "admin", Password: "whatever"})
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))
}
