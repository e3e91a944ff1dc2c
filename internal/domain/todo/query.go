package todo

import (
	"fmt"

	"github.com/planagain/todo-api/internal/domain"
)

// SortField enumerates the stored fields a listing may sort by. Using a
// closed enum instead of passing raw column names through keeps the query
// builder injection-safe.
type SortField string

const (
	SortByTitle       SortField = "title"
	SortByDescription SortField = "description"
	SortByDueDate     SortField = "dueDate"
	SortByDueTime     SortField = "dueTime"
	SortByStatus      SortField = "status"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

// IsValid returns true if the sort field is one of the defined constants.
func (f SortField) IsValid() bool {
	switch f {
	case SortByTitle, SortByDescription, SortByDueDate, SortByDueTime,
		SortByStatus, SortByCreatedAt, SortByUpdatedAt:
		return true
	default:
		return false
	}
}

// SortOrder is the listing sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid returns true if the order is "asc" or "desc".
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// Listing defaults applied by NewListQuery when a parameter is absent.
const (
	DefaultPageLimit = 10
	maxPageLimit     = 100
)

// ListQuery is the typed criteria for the paginated listing. Zero-valued
// Search and Status mean "no filter" for that dimension.
type ListQuery struct {
	Page      int // 1-based
	Limit     int
	Search    string // case-insensitive infix match on title OR description
	Status    Status // exact match when non-empty
	SortBy    SortField
	SortOrder SortOrder
}

// NewListQuery builds a ListQuery from raw request parameters, applying
// defaults (page 1, limit 10, sort by dueDate ascending) and validating the
// status filter, sort field, and sort order against their enums.
func NewListQuery(page, limit int, search, status, sortBy, sortOrder string) (ListQuery, error) {
	q := ListQuery{
		Page:      page,
		Limit:     limit,
		Search:    search,
		SortBy:    SortByDueDate,
		SortOrder: SortAsc,
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}

	fields := make(map[string]string)

	if status != "" {
		q.Status = Status(status)
		if !q.Status.IsValid() {
			fields["status"] = fmt.Sprintf("invalid: %q", status)
		}
	}
	if sortBy != "" {
		q.SortBy = SortField(sortBy)
		if !q.SortBy.IsValid() {
			fields["sortBy"] = fmt.Sprintf("invalid: %q", sortBy)
		}
	}
	if sortOrder != "" {
		q.SortOrder = SortOrder(sortOrder)
		if !q.SortOrder.IsValid() {
			fields["sortOrder"] = fmt.Sprintf("invalid: %q", sortOrder)
		}
	}

	if len(fields) > 0 {
		return ListQuery{}, &domain.ValidationError{Fields: fields}
	}
	return q, nil
}

// Offset returns the number of rows to skip: (page-1) * limit.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Stats holds the per-owner aggregate counts reported alongside every
// listing. They are computed independent of the active filter/search/page so
// the All/Upcoming/Completed counters stay stable while the result set is
// filtered.
type Stats struct {
	Total     int
	Upcoming  int
	Completed int
}

// Page is one page of listing results together with the continuation flag
// and the filter-independent aggregates.
type Page struct {
	Items   []Todo
	HasMore bool
	Stats   Stats
}
