package repository

import (
	"context"
	"errors"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DataLogRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDataLogRepository(db *gorm.DB, log *logger.Logger) *DataLogRepository {
	return &DataLogRepository{db: db, log: log}
}

func (r *DataLogRepository) Create(ctx context.Context, entry *model.DataLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *DataLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DataLog, error) {
	var entry model.DataLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List runs the count and the page query concurrently on separate sessions.
func (r *DataLogRepository) List(ctx context.Context, req *query.Request) ([]model.DataLog, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "data_logs.list")

	start := time.Now()
	records, total, err := query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			err := r.db.WithContext(ctx).
				Model(&model.DataLog{}).
				Scopes(req.Filter.Scope()).
				Count(&total).Error
			return total, err
		},
		func(ctx context.Context) ([]model.DataLog, error) {
			records := make([]model.DataLog, 0, req.Limit)
			err := r.db.WithContext(ctx).
				Scopes(req.Filter.Scope(), req.Paginate("created_at")).
				Find(&records).Error
			return records, err
		},
	)
	if err != nil {
		r.log.ErrorWithContext(ctx, "Failed to list data logs").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}
	return records, total, nil
}

// PurgeOlderThan deletes entries created before cutoff.
func (r *DataLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.DataLog{})
	return res.RowsAffected, res.Error
}
