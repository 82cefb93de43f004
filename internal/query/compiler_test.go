package query

import (
	"errors"
	"net/url"
	"testing"
	"time"

	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func userRegistry() *Registry {
	return NewRegistry().
		DateRange("userDateRange").
		Search("searchUser", "firstName", "email").
		In("userByStatuses", "status").
		IDs("userByIds", "_id", ObjectIDParser).
		Geo("userLocation", "location").
		Flag("emailVerified", "emailVerified")
}

func TestDateRange_DefaultFieldPair(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"userDateRange": {"2020-11-12,2022-11-15"}}, Scope{})
	require.NoError(t, err)
	require.Len(t, res.Filter, 1)

	start := time.Date(2020, 11, 12, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 11, 15, 23, 59, 59, 999000000, time.UTC)

	assert.Equal(t, AllOf{
		Range{Field: "createdAt", Gte: &start},
		Range{Field: "updatedAt", Lte: &end},
	}, res.Filter[0])
}

func TestDateRange_SingleField(t *testing.T) {
	c, err := DateRangeHandler("startDate")([]string{"2020-11-12", "2022-11-15"})
	require.NoError(t, err)

	r, ok := c.(Range)
	require.True(t, ok)
	assert.Equal(t, "startDate", r.Field)
	assert.Equal(t, time.Date(2020, 11, 12, 0, 0, 0, 0, time.UTC), *r.Gte)
	assert.Equal(t, time.Date(2022, 11, 15, 23, 59, 59, 999000000, time.UTC), *r.Lte)
}

func TestDateRange_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"reversed", "2022-11-15,2020-11-12"},
		{"same day", "2022-11-15,2022-11-15"},
		{"one token", "2022-11-15"},
		{"three tokens", "2020-01-01,2021-01-01,2022-01-01"},
		{"not a date", "yesterday,today"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := userRegistry().Compile(url.Values{"userDateRange": {tt.value}}, Scope{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidRange), "got %v", err)
		})
	}
}

func TestGeo_Within(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"userLocation": {"3.379,6.524,5"}}, Scope{})
	require.NoError(t, err)
	require.Len(t, res.Filter, 1)

	miles := 5.0
	radius := miles * 0.000142857

	assert.Equal(t, Within{Field: "location", Lng: 3.379, Lat: 6.524, Radius: radius}, res.Filter[0])
	assert.Equal(t, bson.M{"location": bson.M{
		"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{3.379, 6.524}, radius}},
	}}, ClauseBSON(res.Filter[0]))
	assert.Empty(t, res.WithoutLocation)
}

func TestGeo_InvalidArity(t *testing.T) {
	for _, v := range []string{"3.379,6.524", "3.379,6.524,5,1", "a,b,c"} {
		_, err := userRegistry().Compile(url.Values{"userLocation": {v}}, Scope{})
		require.Error(t, err, v)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidArity), "value %q got %v", v, err)
	}
}

func TestUnknownKeyIsIgnored(t *testing.T) {
	empty, err := userRegistry().Compile(url.Values{}, Scope{})
	require.NoError(t, err)

	withFoo, err := userRegistry().Compile(url.Values{"foo": {"bar"}}, Scope{})
	require.NoError(t, err)

	assert.Equal(t, empty, withFoo)
	assert.Equal(t, bson.M{}, withFoo.Filter.BSON())
}

func TestEmptyValueIsSkipped(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"userDateRange": {""}, "userByStatuses": {" , "}}, Scope{})
	require.NoError(t, err)
	assert.True(t, res.Filter.IsEmpty())
}

func TestByStatuses_InClause(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"userByStatuses": {"ACTIVE,DISABLED"}}, Scope{})
	require.NoError(t, err)
	require.Len(t, res.Filter, 1)

	assert.Equal(t, bson.M{"status": bson.M{"$in": bson.A{"ACTIVE", "DISABLED"}}}, ClauseBSON(res.Filter[0]))
}

func TestByIds_ConvertsIdentifiers(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	res, err := userRegistry().Compile(url.Values{"userByIds": {a.Hex() + " " + b.Hex()}}, Scope{})
	require.NoError(t, err)
	assert.Equal(t, In{Field: "_id", Values: []any{a, b}}, res.Filter[0])

	_, err = userRegistry().Compile(url.Values{"userByIds": {a.Hex() + ",not-an-id"}}, Scope{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
	assert.Contains(t, err.Error(), "userByIds")
}

func TestSearch_RegexAndNumericEquality(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"searchUser": {"ada 42"}}, Scope{})
	require.NoError(t, err)
	require.Len(t, res.Filter, 1)

	assert.Equal(t, AnyOf{
		Match{Field: "firstName", Pattern: "ada"},
		Match{Field: "firstName", Pattern: "42"},
		Eq{Field: "firstName", Value: float64(42)},
		Match{Field: "email", Pattern: "ada"},
		Match{Field: "email", Pattern: "42"},
		Eq{Field: "email", Value: float64(42)},
	}, res.Filter[0])
}

func TestSearch_NoFieldsAddsNoClause(t *testing.T) {
	c, err := SearchHandler()([]string{"ada"})
	require.NoError(t, err)
	assert.Nil(t, c)

	res, err := NewRegistry().Search("q").Compile(url.Values{"q": {"ada"}}, Scope{})
	require.NoError(t, err)
	assert.Empty(t, res.Filter)
}

func TestSearch_EscapesPattern(t *testing.T) {
	c, err := SearchHandler("title")([]string{"c++"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"title": primitive.Regex{Pattern: `c\+\+`, Options: "i"}},
	}}, ClauseBSON(c))
}

func TestFlag(t *testing.T) {
	tests := map[string]bool{"1": true, "true": true, "0": false, "false": false, "yes": false, "TRUE": false}
	for raw, want := range tests {
		res, err := userRegistry().Compile(url.Values{"emailVerified": {raw}}, Scope{})
		require.NoError(t, err)
		assert.Equal(t, Eq{Field: "emailVerified", Value: want}, res.Filter[0], "value %q", raw)
	}
}

func TestCompile_ClauseOrder(t *testing.T) {
	def := Eq{Field: "deleted", Value: false}
	callerLoc := Eq{Field: "region", Value: "west-africa"}

	q := url.Values{
		"emailVerified":  {"1"},
		"userByStatuses": {"ACTIVE"},
		"userLocation":   {"3.379,6.524,5"},
	}
	res, err := userRegistry().Compile(q, Scope{Default: []Clause{def}, Location: []Clause{callerLoc}})
	require.NoError(t, err)

	require.Len(t, res.Filter, 5)
	assert.Equal(t, callerLoc, res.Filter[0])
	assert.IsType(t, Within{}, res.Filter[1])
	assert.Equal(t, def, res.Filter[2])
	assert.Equal(t, In{Field: "status", Values: []any{"ACTIVE"}}, res.Filter[3])
	assert.Equal(t, Eq{Field: "emailVerified", Value: true}, res.Filter[4])

	assert.Equal(t, Filter{def, res.Filter[3], res.Filter[4]}, res.WithoutLocation)
}

func TestCompile_DefaultAlwaysIncluded(t *testing.T) {
	def := Eq{Field: "status", Value: "PUBLISHED"}
	res, err := userRegistry().Compile(url.Values{}, Scope{Default: []Clause{def}})
	require.NoError(t, err)

	assert.Equal(t, Filter{def}, res.Filter)
	assert.Equal(t, bson.M{"$and": bson.A{bson.M{"status": "PUBLISHED"}}}, res.Filter.BSON())
}

func TestCompile_RepeatedKeyValuesAreMerged(t *testing.T) {
	res, err := userRegistry().Compile(url.Values{"userByStatuses": {"ACTIVE", "DISABLED,PENDING"}}, Scope{})
	require.NoError(t, err)
	assert.Equal(t, In{Field: "status", Values: []any{"ACTIVE", "DISABLED", "PENDING"}}, res.Filter[0])
}

func TestRegistry_ReplaceKeepsOrder(t *testing.T) {
	r := NewRegistry().In("a", "a").In("b", "b").Flag("a", "flag")
	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestEngine_Build(t *testing.T) {
	e := NewEngine(50, 100)
	req, err := e.Build(url.Values{"page": {"2"}, "limit": {"10"}, "userByStatuses": {"ACTIVE"}}, userRegistry(), Scope{})
	require.NoError(t, err)

	assert.Equal(t, PageParams{Page: 2, Limit: 10, Skip: 10, Order: Descending}, req.PageParams)
	assert.Len(t, req.Filter, 1)

	_, err = e.Build(url.Values{"userLocation": {"1,2"}}, userRegistry(), Scope{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArity))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, Tokenize(" a, b\tc ,,d "))
	assert.Empty(t, Tokenize(" , "))
}
