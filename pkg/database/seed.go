package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// AdminSeed holds the credentials of the bootstrap admin.
type AdminSeed struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// SeedAdmin creates the admin account unless a user with the same email
// exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, db *mongo.Database, admin AdminSeed) (bool, error) {
	users := db.Collection(constants.CollectionUsers)
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	err := users.FindOne(ctx, bson.M{"email": email}).Err()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	user := model.User{
		FirstName:     admin.FirstName,
		LastName:      admin.LastName,
		Email:         email,
		Phone:         admin.Phone,
		PasswordHash:  string(hashedPassword),
		Role:          model.RoleAdmin,
		Status:        model.UserActive,
		EmailVerified: true,
		TokenVersion:  1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
