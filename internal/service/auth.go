package service

import (
	"context"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Revoker keeps revoked access token ids until they expire.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	users    *UserService
	store    UserStore
	jwt      *JWTService
	denylist Revoker
	log      *logger.Logger
	now      func() time.Time
}

func NewAuthService(users *UserService, store UserStore, jwt *JWTService, denylist Revoker, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{users: users, store: store, jwt: jwt, denylist: denylist, log: log, now: time.Now}
}

// Register creates an ordinary, immediately active account.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "auth.register")

	user, err := s.users.newUser(ctx, &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      model.RoleUser,
		Location:  geoPoint(req.Location),
	}, req.Password)
	if err != nil {
		return nil, err
	}
	res := dto.NewUserResponse(user)
	return &res, nil
}

// Login checks credentials and issues an access and a refresh token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	ctx = serviceCtx(ctx, "auth.login")
	email := normalizeEmail(req.Email)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil || !checkPassword(user.PasswordHash, req.Password) {
		s.log.WarnWithContext(ctx, "Login failed: invalid credentials").
			String("email", email).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != model.UserActive {
		s.log.WarnWithContext(ctx, "Login rejected: account not active").
			String("user_id", user.ID.Hex()).
			String("status", string(user.Status)).
			Log()
		return nil, apperrors.ErrAccountInactive
	}

	refresh, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	now := s.now().UTC()
	user, err = s.store.Update(ctx, user.ID, bson.M{
		"refreshTokenHash":      refresh.Hash,
		"refreshTokenExpiresAt": refresh.ExpiresAt,
		"lastLogin":             now,
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	res, err := s.tokenResponse(user, refresh.Token)
	if err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "User logged in").
		String("user_id", user.ID.Hex()).
		Log()
	return res, nil
}

// Refresh rotates the refresh token. The token version is bumped so access
// tokens issued before stop working.
func (s *AuthService) Refresh(ctx context.Context, token string) (*dto.TokenResponse, error) {
	ctx = serviceCtx(ctx, "auth.refresh")

	id, err := RefreshTokenOwner(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil || !s.jwt.VerifyRefreshToken(token, user.RefreshTokenHash) {
		s.log.WarnWithContext(ctx, "Refresh rejected: unknown token").
			String("user_id", id.Hex()).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if user.RefreshTokenExpiresAt != nil && !user.RefreshTokenExpiresAt.After(s.now()) {
		if _, err := s.store.Update(ctx, id, bson.M{"refreshTokenHash": "", "refreshTokenExpiresAt": nil}); err != nil {
			s.log.WarnWithContext(ctx, "Failed to clear expired refresh token").Err(err).Log()
		}
		return nil, apperrors.ErrTokenExpired
	}
	if user.Status != model.UserActive {
		return nil, apperrors.ErrAccountInactive
	}

	refresh, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	user, err = s.store.BumpTokenVersion(ctx, id, bson.M{
		"refreshTokenHash":      refresh.Hash,
		"refreshTokenExpiresAt": refresh.ExpiresAt,
	})
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	s.log.InfoWithContext(ctx, "Token refreshed").
		String("user_id", id.Hex()).
		Int("token_version", user.TokenVersion).
		Log()
	return s.tokenResponse(user, refresh.Token)
}

func (s *AuthService) tokenResponse(user *model.User, refreshToken string) (*dto.TokenResponse, error) {
	access, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, wrapInternal(err)
	}
	return &dto.TokenResponse{
		Token:        access,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

// Logout ends every session of the user and denylists the presented token
// until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	ctx = serviceCtx(ctx, "auth.logout")

	id, err := claims.UserID()
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	user, err := s.store.BumpTokenVersion(ctx, id, bson.M{"refreshTokenHash": "", "refreshTokenExpiresAt": nil})
	if err != nil {
		return wrapInternal(err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	if s.denylist != nil && claims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			// the version bump already invalidated the token
			s.log.WarnWithContext(ctx, "Failed to denylist access token").
				String("user_id", id.Hex()).
				Err(err).
				Log()
		}
	}

	s.log.InfoWithContext(ctx, "User logged out").
		String("user_id", id.Hex()).
		Log()
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "auth.me")

	user, err := s.users.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := dto.NewUserResponse(user)
	return &res, nil
}

// Authenticate validates an access token for the auth middleware: the
// signature, the denylist, the token version and the account status.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.WarnWithContext(ctx, "Denylist lookup failed").Err(err).Log()
		} else if revoked {
			return nil, apperrors.ErrInvalidToken
		}
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return nil, apperrors.ErrInvalidToken
	}
	if user.Status != model.UserActive {
		return nil, apperrors.ErrAccountInactive
	}

	claims.Role = string(user.Role)
	return claims, nil
}
