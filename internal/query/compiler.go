package query

import (
	"net/url"

	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
)

// Scope carries caller-supplied clauses that are added to every compiled
// filter regardless of the query.
type Scope struct {
	// Default clauses are always included, ahead of the key clauses.
	Default []Clause
	// Location clauses are placed first and left out of WithoutLocation.
	Location []Clause
}

// Result is the outcome of compiling one query.
type Result struct {
	Filter          Filter
	WithoutLocation Filter
}

// Compile builds the filter for q. Unknown keys and empty values are ignored.
func (r *Registry) Compile(q url.Values, scope Scope) (Result, error) {
	var location, clauses Filter
	location = append(location, scope.Location...)

	for _, e := range r.entries {
		tokens := tokensOf(q, e.key)
		if len(tokens) == 0 {
			continue
		}
		c, err := e.handle(tokens)
		if err != nil {
			return Result{}, withKey(e.key, err)
		}
		if c == nil {
			continue
		}
		if e.location {
			location = append(location, c)
		} else {
			clauses = append(clauses, c)
		}
	}

	rest := make(Filter, 0, len(scope.Default)+len(clauses))
	rest = append(rest, scope.Default...)
	rest = append(rest, clauses...)

	filter := make(Filter, 0, len(location)+len(rest))
	filter = append(filter, location...)
	filter = append(filter, rest...)

	return Result{Filter: filter, WithoutLocation: rest}, nil
}

func tokensOf(q url.Values, key string) []string {
	var tokens []string
	for _, v := range q[key] {
		tokens = append(tokens, Tokenize(v)...)
	}
	return tokens
}

func withKey(key string, err error) error {
	de := apperrors.GetDomainError(err)
	if de == nil {
		return apperrors.Detail(apperrors.ErrInvalidInput, "%s: %v", key, err)
	}
	if de.Err != nil {
		return apperrors.Detail(de, "%s: %v", key, de.Err)
	}
	return apperrors.Detail(de, "%s", key)
}

// Request is a normalized listing request ready to run against a store.
type Request struct {
	PageParams
	Filter          Filter
	WithoutLocation Filter
}

// Engine runs the normalizer and a module registry over incoming queries.
type Engine struct {
	normalizer Normalizer
}

func NewEngine(defaultLimit, maxLimit int) *Engine {
	return &Engine{normalizer: NewNormalizer(defaultLimit, maxLimit)}
}

func (e *Engine) Normalizer() Normalizer { return e.normalizer }

// Build normalizes paging controls and compiles the filter of q against reg.
func (e *Engine) Build(q url.Values, reg *Registry, scope Scope) (*Request, error) {
	if q == nil {
		q = url.Values{}
	}
	res, err := reg.Compile(q, scope)
	if err != nil {
		return nil, err
	}
	return &Request{
		PageParams:      e.normalizer.Normalize(q),
		Filter:          res.Filter,
		WithoutLocation: res.WithoutLocation,
	}, nil
}
