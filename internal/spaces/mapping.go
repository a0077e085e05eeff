package spaces

import (
	"net/url"
	"strconv"

	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "policy_spaces", "ps").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("created_by", "CreatedBy").
	Project("is_active", "IsActive").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for policy space queries.
// Nil fields are ignored.
type Filters struct {
	Name      *string `json:"name,omitempty"`
	CreatedBy *string `json:"created_by,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("CreatedBy", f.CreatedBy).
		WhereEquals("IsActive", f.IsActive)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if cb := values.Get("created_by"); cb != "" {
		f.CreatedBy = &cb
	}

	if ia := values.Get("is_active"); ia != "" {
		if v, err := strconv.ParseBool(ia); err == nil {
			f.IsActive = &v
		}
	}

	return f
}

func scanSpace(s repository.Scanner) (PolicySpace, error) {
	var ps PolicySpace
	err := s.Scan(
		&ps.ID,
		&ps.Name,
		&ps.Description,
		&ps.CreatedBy,
		&ps.IsActive,
		&ps.CreatedAt,
		&ps.UpdatedAt,
	)
	return ps, err
}
