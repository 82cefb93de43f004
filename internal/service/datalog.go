package service

import (
	"context"
	"net/url"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/google/uuid"
)

type DataLogStore interface {
	Create(ctx context.Context, entry *model.DataLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.DataLog, error)
	List(ctx context.Context, req *query.Request) ([]model.DataLog, int64, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DataLogRegistry uses column names; the filter is rendered as SQL.
func DataLogRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("dataLogDateRange", "created_at").
		Search("searchDataLog", "path", "method", "client_ip", "status_code").
		IDs("dataLogByIds", "id", query.UUIDParser).
		In("dataLogByMethods", "method").
		In("dataLogByUserIds", "user_id")
}

type DataLogService struct {
	logs          DataLogStore
	listing       listing[model.DataLog, dto.DataLogResponse]
	retentionDays int
	log           *logger.Logger
	now           func() time.Time
}

func NewDataLogService(logs DataLogStore, retentionDays int, deps Deps) *DataLogService {
	deps = deps.normalized()
	return &DataLogService{
		logs: logs,
		listing: listing[model.DataLog, dto.DataLogResponse]{
			engine:   deps.Engine,
			registry: DataLogRegistry(),
			store:    logs,
			mapFn:    dto.NewDataLogResponse,
		},
		retentionDays: retentionDays,
		log:           deps.Log,
		now:           deps.Now,
	}
}

// Record stores one audited request. Called from the audit worker pool.
func (s *DataLogService) Record(ctx context.Context, entry *model.DataLog) error {
	ctx = serviceCtx(ctx, "dataLogs.record")
	if err := s.logs.Create(ctx, entry); err != nil {
		return wrapInternal(err)
	}
	return nil
}

func (s *DataLogService) List(ctx context.Context, q url.Values) (*query.Page[dto.DataLogResponse], error) {
	ctx = serviceCtx(ctx, "dataLogs.list")
	return s.listing.run(ctx, q, query.Scope{})
}

func (s *DataLogService) Get(ctx context.Context, rawID string) (*dto.DataLogResponse, error) {
	ctx = serviceCtx(ctx, "dataLogs.get")

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Detail(apperrors.ErrInvalidIdentifier, "%q", rawID)
	}
	entry, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if entry == nil {
		return nil, apperrors.ErrDataLogNotFound
	}
	res := dto.NewDataLogResponse(entry)
	return &res, nil
}

// Purge deletes entries older than days.
func (s *DataLogService) Purge(ctx context.Context, days int) (*dto.PurgeResponse, error) {
	ctx = serviceCtx(ctx, "dataLogs.purge")

	if days < 1 {
		return nil, apperrors.Detail(apperrors.ErrInvalidInput, "olderThanDays must be at least 1")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	n, err := s.logs.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to purge data logs").Err(err).Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Data logs purged").
		Int64("deleted", n).
		Int("older_than_days", days).
		Log()
	return &dto.PurgeResponse{Deleted: n, Cutoff: cutoff}, nil
}

// PurgeExpired applies the configured retention; run by the scheduler.
func (s *DataLogService) PurgeExpired(ctx context.Context) (int64, error) {
	if s.retentionDays < 1 {
		return 0, nil
	}
	res, err := s.Purge(ctx, s.retentionDays)
	if err != nil {
		return 0, err
	}
	return res.Deleted, nil
}
