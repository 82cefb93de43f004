package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
)

const dateLayout = "2006-01-02"

// Handler compiles the tokens of one query key into a clause.
type Handler func(tokens []string) (Clause, error)

// IDParser converts a raw token into the store's native identifier type.
type IDParser func(raw string) (any, error)

type entry struct {
	key      string
	handle   Handler
	location bool
}

// Registry maps the query keys a listing endpoint understands to their
// handlers. Keys are compiled in registration order.
type Registry struct {
	entries []entry
	index   map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds or replaces the handler for key.
func (r *Registry) Register(key string, h Handler) *Registry {
	return r.add(entry{key: key, handle: h})
}

func (r *Registry) add(e entry) *Registry {
	if i, ok := r.index[e.key]; ok {
		r.entries[i] = e
		return r
	}
	r.index[e.key] = len(r.entries)
	r.entries = append(r.entries, e)
	return r
}

// DateRange registers a date-range key. Without fields the createdAt and
// updatedAt pair is used.
func (r *Registry) DateRange(key string, fields ...string) *Registry {
	return r.Register(key, DateRangeHandler(fields...))
}

// Search registers a free-text key over fields.
func (r *Registry) Search(key string, fields ...string) *Registry {
	return r.Register(key, SearchHandler(fields...))
}

// In registers a set-membership key on field.
func (r *Registry) In(key, field string) *Registry {
	return r.Register(key, InHandler(field))
}

// IDs registers a set-membership key whose tokens are identifiers.
func (r *Registry) IDs(key, field string, parse IDParser) *Registry {
	return r.Register(key, IDsHandler(field, parse))
}

// Flag registers a boolean key on field.
func (r *Registry) Flag(key, field string) *Registry {
	return r.Register(key, FlagHandler(field))
}

// Geo registers a geospatial key on field. Its clause is treated as a
// location clause.
func (r *Registry) Geo(key, field string) *Registry {
	return r.add(entry{key: key, handle: GeoHandler(field), location: true})
}

// Keys returns the registered keys in compile order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Tokenize splits a raw value on commas and whitespace.
func Tokenize(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func DateRangeHandler(fields ...string) Handler {
	if len(fields) == 0 {
		fields = []string{constants.FieldCreatedAt, constants.FieldUpdatedAt}
	}
	return func(tokens []string) (Clause, error) {
		if len(tokens) != 2 {
			return nil, apperrors.Detail(apperrors.ErrInvalidRange, "expected 2 dates, got %d", len(tokens))
		}
		start, err := parseDate(tokens[0])
		if err != nil {
			return nil, apperrors.Detail(apperrors.ErrInvalidRange, "start date %q is not a date", tokens[0])
		}
		end, err := parseDate(tokens[1])
		if err != nil {
			return nil, apperrors.Detail(apperrors.ErrInvalidRange, "end date %q is not a date", tokens[1])
		}
		if !start.Before(end) {
			return nil, apperrors.Detail(apperrors.ErrInvalidRange, "start date must be before end date")
		}

		from := startOfDay(start)
		to := endOfDay(end)
		if len(fields) == 1 {
			return Range{Field: fields[0], Gte: &from, Lte: &to}, nil
		}
		return AllOf{
			Range{Field: fields[0], Gte: &from},
			Range{Field: fields[1], Lte: &to},
		}, nil
	}
}

func SearchHandler(fields ...string) Handler {
	return func(tokens []string) (Clause, error) {
		if len(fields) == 0 {
			return nil, nil
		}
		var or AnyOf
		for _, field := range fields {
			for _, token := range tokens {
				or = append(or, Match{Field: field, Pattern: regexp.QuoteMeta(token)})
				if n, ok := parseNumber(token); ok {
					or = append(or, Eq{Field: field, Value: n})
				}
			}
		}
		return or, nil
	}
}

func InHandler(field string) Handler {
	return func(tokens []string) (Clause, error) {
		values := make([]any, 0, len(tokens))
		for _, t := range tokens {
			values = append(values, t)
		}
		return In{Field: field, Values: values}, nil
	}
}

func IDsHandler(field string, parse IDParser) Handler {
	return func(tokens []string) (Clause, error) {
		values := make([]any, 0, len(tokens))
		for _, t := range tokens {
			id, err := parse(t)
			if err != nil {
				return nil, apperrors.Detail(apperrors.ErrInvalidIdentifier, "%q", t)
			}
			values = append(values, id)
		}
		return In{Field: field, Values: values}, nil
	}
}

func FlagHandler(field string) Handler {
	return func(tokens []string) (Clause, error) {
		return Eq{Field: field, Value: tokens[0] == "1" || tokens[0] == "true"}, nil
	}
}

func GeoHandler(field string) Handler {
	return func(tokens []string) (Clause, error) {
		if len(tokens) != 3 {
			return nil, apperrors.Detail(apperrors.ErrInvalidArity, "expected longitude, latitude and radius, got %d values", len(tokens))
		}
		var coords [3]float64
		for i, t := range tokens {
			n, ok := parseNumber(t)
			if !ok {
				return nil, apperrors.Detail(apperrors.ErrInvalidArity, "%q is not a number", t)
			}
			coords[i] = n
		}
		return Within{
			Field:  field,
			Lng:    coords[0],
			Lat:    coords[1],
			Radius: coords[2] * constants.GeoRadiusFactor,
		}, nil
	}
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
