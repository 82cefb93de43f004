package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type UserStatus string

const (
	UserPending     UserStatus = "PENDING"
	UserActive      UserStatus = "ACTIVE"
	UserDisabled    UserStatus = "DISABLED"
	UserDeactivated UserStatus = "DEACTIVATED"
)

// UserStatuses lists every status in display order.
var UserStatuses = []UserStatus{UserPending, UserActive, UserDisabled, UserDeactivated}

type User struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	FirstName             string             `bson:"firstName"`
	LastName              string             `bson:"lastName"`
	Email                 string             `bson:"email"`
	Phone                 string             `bson:"phone,omitempty"`
	PasswordHash          string             `bson:"passwordHash"`
	Role                  UserRole           `bson:"role"`
	Status                UserStatus         `bson:"status"`
	Location              *GeoPoint          `bson:"location,omitempty"`
	EmailVerified         bool               `bson:"emailVerified"`
	TokenVersion          int                `bson:"tokenVersion"`
	RefreshTokenHash      string             `bson:"refreshTokenHash,omitempty"`
	RefreshTokenExpiresAt *time.Time         `bson:"refreshTokenExpiresAt,omitempty"`
	LastLogin             *time.Time         `bson:"lastLogin,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
