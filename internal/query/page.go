package query

// Page is the envelope returned by every listing endpoint.
type Page[T any] struct {
	CurrentPage  int   `json:"currentPage"`
	NextPage     *int  `json:"nextPage"`
	PreviousPage *int  `json:"previousPage"`
	PerPageLimit int   `json:"perPageLimit"`
	TotalRecords int64 `json:"totalRecords"`
	TotalPages   int   `json:"totalPages"`
	Results      []T   `json:"results"`
}

// Assemble computes navigation metadata for an already fetched page.
// removeItems is subtracted from count before any page math.
func Assemble[T any](page, limit int, count int64, records []T, removeItems int64) Page[T] {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	if records == nil {
		records = []T{}
	}

	total := count - removeItems
	totalPages := 1
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	p := Page[T]{
		CurrentPage:  page,
		PerPageLimit: limit,
		TotalRecords: total,
		TotalPages:   totalPages,
		Results:      records,
	}
	if page+1 <= totalPages {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}

func NewPage[T any](params PageParams, count int64, records []T) Page[T] {
	return Assemble(params.Page, params.Limit, count, records, 0)
}

// MapPage converts the results of p with fn, keeping the metadata.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, fn(r))
	}
	return Page[R]{
		CurrentPage:  p.CurrentPage,
		NextPage:     p.NextPage,
		PreviousPage: p.PreviousPage,
		PerPageLimit: p.PerPageLimit,
		TotalRecords: p.TotalRecords,
		TotalPages:   p.TotalPages,
		Results:      out,
	}
}
