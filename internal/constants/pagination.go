package constants

// Paging query parameters
const (
	QueryParamPage  = "page"
	QueryParamLimit = "limit"
	QueryParamOrder = "order"
)

// Paging defaults, overridable through QUERY_DEFAULT_LIMIT and QUERY_MAX_LIMIT
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Sort orders accepted by the order parameter
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Default field pair used by date-range keys without explicit fields
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// GeoRadiusFactor converts a radius in miles into the angular unit of
// $centerSphere.
const GeoRadiusFactor = 0.000142857
