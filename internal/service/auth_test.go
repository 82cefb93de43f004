package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUsers, *fakeRevoker) {
	t.Helper()
	users := newFakeUsers()
	revoker := &fakeRevoker{}
	userSvc := NewUserService(users, Deps{})
	jwtSvc := NewJWTService(config.JWTConfig{
		Secret:          "test-secret",
		ExpirationTime:  15 * time.Minute,
		RefreshDuration: 24 * time.Hour,
		Issuer:          "inventors-test",
	})
	return NewAuthService(userSvc, users, jwtSvc, revoker, nil), users, revoker
}

func register(t *testing.T, svc *AuthService) *dto.UserResponse {
	t.Helper()
	u, err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "cobol-rules",
	})
	require.NoError(t, err)
	return u
}

func login(t *testing.T, svc *AuthService) *dto.TokenResponse {
	t.Helper()
	tokens, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Grace@Example.com",
		Password: "cobol-rules",
	})
	require.NoError(t, err)
	return tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	u := register(t, svc)
	assert.Equal(t, model.RoleUser, u.Role)

	tokens := login(t, svc)
	assert.NotEmpty(t, tokens.Token)
	assert.Equal(t, 900, tokens.ExpiresIn)
	assert.True(t, strings.HasPrefix(tokens.RefreshToken, u.ID+"."))
	assert.NotNil(t, tokens.User.LastLogin)

	claims, err := svc.Authenticate(context.Background(), tokens.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, string(model.RoleUser), claims.Role)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, users, _ := newAuthService(t)
	u := register(t, svc)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "grace@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "cobol-rules"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	id, _ := primitive.ObjectIDFromHex(u.ID)
	_, err = users.Update(context.Background(), id, bson.M{"status": model.UserDisabled})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "grace@example.com", Password: "cobol-rules"})
	assert.True(t, errors.Is(err, apperrors.ErrAccountInactive))
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc)
	first := login(t, svc)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the old refresh token is gone and the old access token is stale
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRefreshToken))

	_, err = svc.Authenticate(context.Background(), first.Token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))

	_, err = svc.Authenticate(context.Background(), second.Token)
	assert.NoError(t, err)
}

func TestAuthService_RefreshRejectsMalformed(t *testing.T) {
	svc, _, _ := newAuthService(t)

	for _, token := range []string{"", "no-dot", "zzz.abc", primitive.NewObjectID().Hex() + ".abc"} {
		_, err := svc.Refresh(context.Background(), token)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidRefreshToken), token)
	}
}

func TestAuthService_RefreshExpired(t *testing.T) {
	svc, _, _ := newAuthService(t)
	register(t, svc)
	tokens := login(t, svc)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	_, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, revoker := newAuthService(t)
	register(t, svc)
	tokens := login(t, svc)

	claims, err := svc.Authenticate(context.Background(), tokens.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))

	revoked, _ := revoker.IsRevoked(context.Background(), claims.ID)
	assert.True(t, revoked)

	_, err = svc.Authenticate(context.Background(), tokens.Token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))

	_, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRefreshToken))
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthService(t)
	u := register(t, svc)
	id, _ := primitive.ObjectIDFromHex(u.ID)

	me, err := svc.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", me.Email)

	_, err = svc.Me(context.Background(), primitive.NewObjectID())
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestJWTService_ValidateToken(t *testing.T) {
	jwtSvc := NewJWTService(config.JWTConfig{Secret: "s", ExpirationTime: time.Minute, Issuer: "i"})
	user := &model.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: model.RoleAdmin, TokenVersion: 3}

	token, err := jwtSvc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := jwtSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.NotEmpty(t, claims.ID)

	other := NewJWTService(config.JWTConfig{Secret: "other", ExpirationTime: time.Minute, Issuer: "i"})
	_, err = other.ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))

	jwtSvc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = jwtSvc.ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}
