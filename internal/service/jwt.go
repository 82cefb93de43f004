package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/config"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by access tokens. The jti (RegisteredClaims.ID) is what
// logout puts on the denylist.
type Claims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

// RefreshToken is a freshly issued refresh token. Only Hash is stored.
type RefreshToken struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

type JWTService struct {
	secretKey  []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:  []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.ExpirationTime,
		refreshTTL: cfg.RefreshDuration,
		now:        time.Now,
	}
}

// AccessTTL is reported to clients as expiresIn.
func (s *JWTService) AccessTTL() time.Duration { return s.accessTTL }

// GenerateToken creates a short-lived access token for user.
func (s *JWTService) GenerateToken(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Email:        user.Email,
		Role:         string(user.Role),
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// ValidateToken checks signature, issuer and expiry.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken returns "<userID>.<secret>". The user id prefix lets
// refresh find the account directly; the bcrypt hash covers the whole token.
func (s *JWTService) GenerateRefreshToken(userID primitive.ObjectID) (*RefreshToken, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	token := userID.Hex() + "." + base64.RawURLEncoding.EncodeToString(b)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}
	return &RefreshToken{Token: token, Hash: string(hash), ExpiresAt: s.now().Add(s.refreshTTL).UTC()}, nil
}

// RefreshTokenOwner extracts the user id of a refresh token.
func RefreshTokenOwner(token string) (primitive.ObjectID, error) {
	prefix, _, ok := strings.Cut(token, ".")
	if !ok {
		return primitive.NilObjectID, apperrors.ErrInvalidRefreshToken
	}
	id, err := primitive.ObjectIDFromHex(prefix)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrInvalidRefreshToken
	}
	return id, nil
}

func (s *JWTService) VerifyRefreshToken(token, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
