package query

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UUIDParser converts tokens into UUIDs for SQL-backed stores.
func UUIDParser(raw string) (any, error) {
	return uuid.Parse(raw)
}

// Scope returns a gorm scope applying f as WHERE conditions. Field names are
// used as column names. Clauses that have no SQL form add
// ErrUnsupportedFilter to the statement.
func (f Filter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range f {
			sql, args, err := ClauseSQL(c)
			if err != nil {
				_ = db.AddError(err)
				return db
			}
			db = db.Where(sql, args...)
		}
		return db
	}
}

// ClauseSQL renders a single clause as a condition with positional args.
func ClauseSQL(c Clause) (string, []any, error) {
	switch v := c.(type) {
	case Range:
		var parts []string
		var args []any
		if v.Gte != nil {
			parts = append(parts, v.Field+" >= ?")
			args = append(args, *v.Gte)
		}
		if v.Lte != nil {
			parts = append(parts, v.Field+" <= ?")
			args = append(args, *v.Lte)
		}
		if len(parts) == 0 {
			return "1 = 1", nil, nil
		}
		return strings.Join(parts, " AND "), args, nil
	case In:
		return v.Field + " IN ?", []any{v.Values}, nil
	case Eq:
		if n, ok := v.Value.(float64); ok {
			return "CAST(" + v.Field + " AS TEXT) = ?", []any{strconv.FormatFloat(n, 'f', -1, 64)}, nil
		}
		return v.Field + " = ?", []any{v.Value}, nil
	case Match:
		return "CAST(" + v.Field + " AS TEXT) ~* ?", []any{v.Pattern}, nil
	case AnyOf:
		return joinSQL(v, " OR ")
	case AllOf:
		return joinSQL(v, " AND ")
	case Within:
		return "", nil, apperrors.Detail(apperrors.ErrUnsupportedFilter, "geospatial filter on %s", v.Field)
	default:
		return "", nil, apperrors.Detail(apperrors.ErrUnsupportedFilter, "%T", c)
	}
}

func joinSQL(cs []Clause, sep string) (string, []any, error) {
	if len(cs) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(cs))
	var args []any
	for _, c := range cs {
		sql, a, err := ClauseSQL(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		args = append(args, a...)
	}
	return strings.Join(parts, sep), args, nil
}

// Paginate applies offset, limit and ordering to a gorm query. Ties on
// sortColumn are broken by id in the same direction.
func (p PageParams) Paginate(sortColumn string) func(*gorm.DB) *gorm.DB {
	dir := "DESC"
	if p.Order == Ascending {
		dir = "ASC"
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Skip).
			Limit(p.Limit).
			Order(fmt.Sprintf("%s %s", sortColumn, dir)).
			Order("id " + dir)
	}
}
