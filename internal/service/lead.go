package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DuplicateLeadWindow is how long the same email may not register the
// same interest twice.
const DuplicateLeadWindow = 24 * time.Hour

const defaultLeadSource = "website"

type LeadStore interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Lead, error)
	FindRecent(ctx context.Context, email, interest string, since time.Time) (*model.Lead, error)
	List(ctx context.Context, req *query.Request) ([]model.Lead, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Lead, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

func LeadRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("leadDateRange").
		Search("searchLead", "fullName", "email", "phone", "company").
		In("leadByStatuses", "status").
		IDs("leadByIds", "_id", query.ObjectIDParser).
		In("leadBySources", "source")
}

type LeadService struct {
	leads     LeadStore
	listing   listing[model.Lead, dto.LeadResponse]
	publisher webhook.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewLeadService(leads LeadStore, deps Deps) *LeadService {
	deps = deps.normalized()
	return &LeadService{
		leads: leads,
		listing: listing[model.Lead, dto.LeadResponse]{
			engine:   deps.Engine,
			registry: LeadRegistry(),
			store:    leads,
			mapFn:    dto.NewLeadResponse,
		},
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       deps.Now,
	}
}

func (s *LeadService) Create(ctx context.Context, req *dto.CreateLeadRequest) (*dto.LeadResponse, error) {
	ctx = serviceCtx(ctx, "leads.create")

	now := s.now().UTC()
	email := normalizeEmail(req.Email)
	interest := strings.TrimSpace(req.Interest)

	existing, err := s.leads.FindRecent(ctx, email, interest, now.Add(-DuplicateLeadWindow))
	if err != nil {
		return nil, wrapInternal(err)
	}
	if existing != nil {
		s.log.InfoWithContext(ctx, "Lead rejected: duplicate registration").
			String("email", email).
			String("interest", interest).
			Log()
		return nil, apperrors.ErrDuplicateLead
	}

	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = defaultLeadSource
	}
	lead := &model.Lead{
		FullName:  strings.TrimSpace(req.FullName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Company:   strings.TrimSpace(req.Company),
		Interest:  interest,
		Source:    source,
		Message:   strings.TrimSpace(req.Message),
		Status:    model.LeadNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create lead").Err(err).Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Lead registered").
		String("lead_id", lead.ID.Hex()).
		String("source", source).
		Log()

	res := dto.NewLeadResponse(lead)
	s.publisher.Publish(ctx, model.TopicLeadCreated, res)
	return &res, nil
}

func (s *LeadService) Get(ctx context.Context, rawID string) (*dto.LeadResponse, error) {
	ctx = serviceCtx(ctx, "leads.get")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if lead == nil {
		return nil, apperrors.ErrLeadNotFound
	}
	res := dto.NewLeadResponse(lead)
	return &res, nil
}

func (s *LeadService) List(ctx context.Context, q url.Values) (*query.Page[dto.LeadResponse], error) {
	ctx = serviceCtx(ctx, "leads.list")
	return s.listing.run(ctx, q, query.Scope{})
}

func (s *LeadService) UpdateStatus(ctx context.Context, rawID string, status model.LeadStatus) (*dto.LeadResponse, error) {
	ctx = serviceCtx(ctx, "leads.updateStatus")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	lead, err := s.leads.Update(ctx, id, bson.M{"status": status})
	if err != nil {
		return nil, wrapInternal(err)
	}
	if lead == nil {
		return nil, apperrors.ErrLeadNotFound
	}

	s.log.InfoWithContext(ctx, "Lead status updated").
		String("lead_id", id.Hex()).
		String("status", string(status)).
		Log()

	res := dto.NewLeadResponse(lead)
	return &res, nil
}

func (s *LeadService) Delete(ctx context.Context, rawID string) error {
	ctx = serviceCtx(ctx, "leads.delete")

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.leads.Delete(ctx, id)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrLeadNotFound
	}
	return nil
}
