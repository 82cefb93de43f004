package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestAssemble(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		count       int64
		remove      int64
		want        Page[string]
	}{
		{
			name: "empty result", page: 1, limit: 50, count: 0,
			want: Page[string]{CurrentPage: 1, PerPageLimit: 50, TotalRecords: 0, TotalPages: 1, Results: []string{}},
		},
		{
			name: "last of two pages", page: 2, limit: 50, count: 100,
			want: Page[string]{CurrentPage: 2, PreviousPage: intPtr(1), PerPageLimit: 50, TotalRecords: 100, TotalPages: 2, Results: []string{}},
		},
		{
			name: "first of three pages", page: 1, limit: 10, count: 21,
			want: Page[string]{CurrentPage: 1, NextPage: intPtr(2), PerPageLimit: 10, TotalRecords: 21, TotalPages: 3, Results: []string{}},
		},
		{
			name: "middle page", page: 2, limit: 10, count: 30,
			want: Page[string]{CurrentPage: 2, NextPage: intPtr(3), PreviousPage: intPtr(1), PerPageLimit: 10, TotalRecords: 30, TotalPages: 3, Results: []string{}},
		},
		{
			name: "removed items shrink totals", page: 1, limit: 10, count: 25, remove: 6,
			want: Page[string]{CurrentPage: 1, NextPage: intPtr(2), PerPageLimit: 10, TotalRecords: 19, TotalPages: 2, Results: []string{}},
		},
		{
			name: "removal past zero floors pages", page: 1, limit: 10, count: 2, remove: 5,
			want: Page[string]{CurrentPage: 1, PerPageLimit: 10, TotalRecords: -3, TotalPages: 1, Results: []string{}},
		},
		{
			name: "page beyond the end", page: 9, limit: 10, count: 20,
			want: Page[string]{CurrentPage: 9, PreviousPage: intPtr(8), PerPageLimit: 10, TotalRecords: 20, TotalPages: 2, Results: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assemble[string](tt.page, tt.limit, tt.count, nil, tt.remove)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssemble_ZeroLimitDoesNotPanic(t *testing.T) {
	p := Assemble(1, 0, 5, []int{1}, 0)
	assert.Equal(t, 1, p.PerPageLimit)
	assert.Equal(t, 5, p.TotalPages)
}

func TestPage_JSONShape(t *testing.T) {
	raw, err := json.Marshal(NewPage(PageParams{Page: 1, Limit: 50}, 0, []string(nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"currentPage": 1,
		"nextPage": null,
		"previousPage": null,
		"perPageLimit": 50,
		"totalRecords": 0,
		"totalPages": 1,
		"results": []
	}`, string(raw))
}

func TestMapPage(t *testing.T) {
	p := Assemble(2, 2, 5, []int{3, 4}, 0)
	mapped := MapPage(p, func(v int) string { return string(rune('a' + v)) })

	assert.Equal(t, []string{"d", "e"}, mapped.Results)
	assert.Equal(t, p.NextPage, mapped.NextPage)
	assert.Equal(t, p.TotalPages, mapped.TotalPages)
}

func TestFetchPage_RunsConcurrently(t *testing.T) {
	var inflight, peak int32
	enter := func() {
		n := atomic.AddInt32(&inflight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inflight, -1)
	}

	records, total, err := FetchPage(context.Background(),
		func(context.Context) (int64, error) { enter(); return 42, nil },
		func(context.Context) ([]string, error) { enter(); return []string{"a"}, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.Equal(t, []string{"a"}, records)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestFetchPage_ErrorCancelsSibling(t *testing.T) {
	boom := errors.New("count failed")

	_, _, err := FetchPage(context.Background(),
		func(context.Context) (int64, error) { return 0, boom },
		func(ctx context.Context) ([]string, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return []string{"late"}, nil
			}
		},
	)
	assert.ErrorIs(t, err, boom)
}
