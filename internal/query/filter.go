package query

import "time"

// Clause is a single condition of a Filter. The concrete types below are
// rendered by a storage backend (see BSON and Scope).
type Clause interface {
	clause()
}

// Range bounds a time field. A nil bound is open.
type Range struct {
	Field string
	Gte   *time.Time
	Lte   *time.Time
}

// In matches when the field equals any of Values.
type In struct {
	Field  string
	Values []any
}

// Eq matches an exact value.
type Eq struct {
	Field string
	Value any
}

// Match is a case-insensitive regular expression match.
type Match struct {
	Field   string
	Pattern string
}

// Within matches points inside a sphere centred at (Lng, Lat). Radius is in
// radians.
type Within struct {
	Field  string
	Lng    float64
	Lat    float64
	Radius float64
}

// AnyOf is a disjunction.
type AnyOf []Clause

// AllOf is a conjunction.
type AllOf []Clause

func (Range) clause()  {}
func (In) clause()     {}
func (Eq) clause()     {}
func (Match) clause()  {}
func (Within) clause() {}
func (AnyOf) clause()  {}
func (AllOf) clause()  {}

// Filter is an ordered conjunction of clauses. An empty Filter matches every
// record.
type Filter []Clause

func (f Filter) IsEmpty() bool { return len(f) == 0 }
