package query

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClauseSQL(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 999000000, time.UTC)

	tests := []struct {
		name     string
		clause   Clause
		wantSQL  string
		wantArgs []any
	}{
		{"range", Range{Field: "created_at", Gte: &from, Lte: &to}, "created_at >= ? AND created_at <= ?", []any{from, to}},
		{"open range", Range{Field: "created_at", Gte: &from}, "created_at >= ?", []any{from}},
		{"in", In{Field: "method", Values: []any{"GET", "POST"}}, "method IN ?", []any{[]any{"GET", "POST"}}},
		{"bool", Eq{Field: "active", Value: true}, "active = ?", []any{true}},
		{"number", Eq{Field: "status_code", Value: float64(404)}, "CAST(status_code AS TEXT) = ?", []any{"404"}},
		{"match", Match{Field: "path", Pattern: "users"}, "CAST(path AS TEXT) ~* ?", []any{"users"}},
		{
			"or",
			AnyOf{Match{Field: "path", Pattern: "a"}, Eq{Field: "status_code", Value: float64(1.5)}},
			"(CAST(path AS TEXT) ~* ?) OR (CAST(status_code AS TEXT) = ?)",
			[]any{"a", "1.5"},
		},
		{
			"and",
			AllOf{Range{Field: "created_at", Gte: &from}, Range{Field: "updated_at", Lte: &to}},
			"(created_at >= ?) AND (updated_at <= ?)",
			[]any{from, to},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := ClauseSQL(tt.clause)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestClauseSQL_GeoIsUnsupported(t *testing.T) {
	_, _, err := ClauseSQL(Within{Field: "location", Lng: 1, Lat: 2, Radius: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnsupportedFilter))
}

func TestUUIDParser(t *testing.T) {
	id := uuid.New()
	got, err := UUIDParser(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = IDsHandler("id", UUIDParser)([]string{"nope"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
}
