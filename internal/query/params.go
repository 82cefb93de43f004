package query

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
)

// Sort directions as stored in PageParams.Order.
const (
	Ascending  = 1
	Descending = -1
)

// PageParams holds normalized paging controls for one listing request.
type PageParams struct {
	Page  int
	Limit int
	Skip  int
	Order int
}

// Normalizer turns raw query parameters into PageParams. It never fails:
// malformed input degrades to defaults.
type Normalizer struct {
	defaultLimit int
	maxLimit     int
}

func NewNormalizer(defaultLimit, maxLimit int) Normalizer {
	if maxLimit < 1 {
		maxLimit = constants.MaxLimit
	}
	if defaultLimit < 1 {
		defaultLimit = constants.DefaultLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return Normalizer{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

func (n Normalizer) DefaultLimit() int { return n.defaultLimit }
func (n Normalizer) MaxLimit() int     { return n.maxLimit }

func (n Normalizer) Normalize(q url.Values) PageParams {
	limit := parsePositive(q.Get(constants.QueryParamLimit))
	switch {
	case limit < 1:
		limit = n.defaultLimit
	case limit > n.maxLimit:
		limit = n.maxLimit
	}

	page := parsePositive(q.Get(constants.QueryParamPage))
	if page < 1 {
		page = constants.DefaultPage
	}
	// keeps Skip and the next page number inside int
	if maxPage := (math.MaxInt - 1) / limit; page > maxPage {
		page = maxPage
	}

	return PageParams{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
		Order: parseOrder(q.Get(constants.QueryParamOrder)),
	}
}

// parsePositive reads a whole number. Integers too large for int come back
// as math.MaxInt so callers clamp them; exponent forms such as 1e3 count when
// they are whole. Anything else is 0.
func parsePositive(raw string) int {
	raw = strings.TrimSpace(raw)
	v, err := strconv.Atoi(raw)
	if err == nil {
		return v
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return 0
		}
		return math.MaxInt
	}

	if !strings.ContainsAny(raw, "eE") || strings.ContainsAny(raw, "xXnN") {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	switch {
	case errors.Is(err, strconv.ErrRange) && f > 0:
		return math.MaxInt
	case err != nil, f < 1, f != math.Trunc(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	}
	return int(f)
}

func parseOrder(raw string) int {
	if strings.EqualFold(strings.TrimSpace(raw), constants.OrderAsc) {
		return Ascending
	}
	return Descending
}
