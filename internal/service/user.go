package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/internal/repository"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, req *query.Request) ([]model.User, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error)
	BumpTokenVersion(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountByStatus(ctx context.Context, filter query.Filter) (map[string]int64, error)
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// UserRegistry lists the query keys accepted by the user listing.
func UserRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("userDateRange").
		Search("searchUser", "firstName", "lastName", "email", "phone").
		In("userByStatuses", "status").
		In("userByRoles", "role").
		IDs("userByIds", "_id", query.ObjectIDParser).
		Geo("userLocation", "location").
		Flag("emailVerified", "emailVerified")
}

type UserService struct {
	users     UserStore
	listing   listing[model.User, dto.UserResponse]
	publisher webhook.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewUserService(users UserStore, deps Deps) *UserService {
	deps = deps.normalized()
	return &UserService{
		users: users,
		listing: listing[model.User, dto.UserResponse]{
			engine:   deps.Engine,
			registry: UserRegistry(),
			store:    users,
			mapFn:    dto.NewUserResponse,
		},
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       deps.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func geoPoint(coords []float64) *model.GeoPoint {
	if len(coords) != 2 {
		return nil
	}
	return model.NewGeoPoint(coords[0], coords[1])
}

// newUser builds and stores an active account. Shared by admin creation
// and self registration.
func (s *UserService) newUser(ctx context.Context, u *model.User, password string) (*model.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, wrapInternal(err)
	}

	now := s.now().UTC()
	u.Email = normalizeEmail(u.Email)
	u.PasswordHash = hash
	u.Status = model.UserActive
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = model.RoleUser
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.InfoWithContext(ctx, "User creation rejected: email exists").
				String("email", u.Email).
				Log()
			return nil, apperrors.ErrEmailExists
		}
		s.log.ErrorWithContext(ctx, "Failed to create user").
			String("email", u.Email).
			Err(err).
			Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "User created").
		String("user_id", u.ID.Hex()).
		String("role", string(u.Role)).
		Log()

	s.publisher.Publish(ctx, model.TopicUserCreated, dto.NewUserResponse(u))
	return u, nil
}

func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "users.create")

	user, err := s.newUser(ctx, &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      model.UserRole(req.Role),
		Location:  geoPoint(req.Location),
	}, req.Password)
	if err != nil {
		return nil, err
	}
	res := dto.NewUserResponse(user)
	return &res, nil
}

func (s *UserService) get(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, rawID string) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "users.get")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewUserResponse(user)
	return &res, nil
}

func (s *UserService) List(ctx context.Context, q url.Values) (*query.Page[dto.UserResponse], error) {
	ctx = serviceCtx(ctx, "users.list")

	page, err := s.listing.run(ctx, q, query.Scope{})
	if err != nil {
		s.log.WarnWithContext(ctx, "User listing failed").Err(err).Log()
		return nil, err
	}
	return page, nil
}

// Summary counts users per status. It honours every filter key except the
// location ones.
func (s *UserService) Summary(ctx context.Context, q url.Values) (*dto.UserSummary, error) {
	ctx = serviceCtx(ctx, "users.summary")

	req, err := s.listing.engine.Build(q, s.listing.registry, query.Scope{})
	if err != nil {
		return nil, err
	}
	counts, err := s.users.CountByStatus(ctx, req.WithoutLocation)
	if err != nil {
		return nil, wrapInternal(err)
	}

	summary := &dto.UserSummary{ByStatus: make(map[string]int64, len(model.UserStatuses))}
	for _, st := range model.UserStatuses {
		n := counts[string(st)]
		summary.ByStatus[string(st)] = n
		summary.Total += n
	}
	return summary, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, rawID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "users.update")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["firstName"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		set["lastName"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if p := geoPoint(req.Location); p != nil {
		set["location"] = p
	}
	if len(set) == 0 {
		return s.GetByID(ctx, rawID)
	}

	user, err := s.users.Update(ctx, id, set)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	s.log.InfoWithContext(ctx, "User profile updated").
		String("user_id", id.Hex()).
		Int("fields", len(set)).
		Log()

	res := dto.NewUserResponse(user)
	return &res, nil
}

// ChangeStatus moves the account to status. Leaving ACTIVE revokes every
// session of the user.
func (s *UserService) ChangeStatus(ctx context.Context, actor Actor, rawID string, status model.UserStatus) (*dto.UserResponse, error) {
	ctx = serviceCtx(ctx, "users.changeStatus")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if id == actor.ID && status != model.UserActive {
		return nil, apperrors.Detail(apperrors.ErrForbidden, "cannot change the status of your own account")
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "user is already %s", status)
	}

	set := bson.M{"status": status}
	var user *model.User
	if status == model.UserActive {
		user, err = s.users.Update(ctx, id, set)
	} else {
		set["refreshTokenHash"] = ""
		set["refreshTokenExpiresAt"] = nil
		user, err = s.users.BumpTokenVersion(ctx, id, set)
	}
	if err != nil {
		return nil, wrapInternal(err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	s.log.InfoWithContext(ctx, "User status changed").
		String("user_id", id.Hex()).
		String("from", string(current.Status)).
		String("to", string(status)).
		Log()

	res := dto.NewUserResponse(user)
	return &res, nil
}

// UpdatePassword changes the caller's password and signs out every other
// session.
func (s *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, req *dto.UpdatePasswordRequest) error {
	ctx = serviceCtx(ctx, "users.updatePassword")

	if req.NewPassword != req.ConfirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		s.log.WarnWithContext(ctx, "Password change rejected: wrong current password").
			String("user_id", userID.Hex()).
			Log()
		return apperrors.ErrIncorrectPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return wrapInternal(err)
	}
	if _, err := s.users.BumpTokenVersion(ctx, userID, bson.M{
		"passwordHash":          hash,
		"refreshTokenHash":      "",
		"refreshTokenExpiresAt": nil,
	}); err != nil {
		return wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "User password updated").
		String("user_id", userID.Hex()).
		Log()
	return nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, rawID string) error {
	ctx = serviceCtx(ctx, "users.delete")

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if id == actor.ID {
		s.log.WarnWithContext(ctx, "User attempted to delete themselves").
			String("user_id", id.Hex()).
			Log()
		return apperrors.ErrSelfDeletion
	}

	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrUserNotFound
	}

	s.log.InfoWithContext(ctx, "User deleted").
		String("user_id", id.Hex()).
		String("deleted_by", actor.ID.Hex()).
		Log()
	return nil
}

// CleanupRefreshTokens drops expired refresh tokens; run by the scheduler.
func (s *UserService) CleanupRefreshTokens(ctx context.Context) (int64, error) {
	ctx = serviceCtx(ctx, "users.cleanupRefreshTokens")

	n, err := s.users.ClearExpiredRefreshTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, wrapInternal(err)
	}
	return n, nil
}
