package documents

import (
	"net/url"

	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("policy_space_id", "PolicySpaceID").
	Project("filename", "Filename").
	Project("original_filename", "OriginalFilename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("description", "Description").
	Project("created_by", "CreatedBy").
	Project("status", "Status").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. PolicySpaceID, Status, ContentType, and
// CreatedBy use exact matching; Filename uses case-insensitive contains
// matching.
type Filters struct {
	PolicySpaceID *string `json:"policy_space_id,omitempty"`
	Status        *string `json:"status,omitempty"`
	Filename      *string `json:"filename,omitempty"`
	ContentType   *string `json:"content_type,omitempty"`
	CreatedBy     *string `json:"created_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("PolicySpaceID", f.PolicySpaceID).
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType).
		WhereEquals("CreatedBy", f.CreatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if ps := values.Get("policy_space_id"); ps != "" {
		f.PolicySpaceID = &ps
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if cb := values.Get("created_by"); cb != "" {
		f.CreatedBy = &cb
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.PolicySpaceID,
		&d.Filename,
		&d.OriginalFilename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.Description,
		&d.CreatedBy,
		&d.Status,
		&d.UploadedAt,
		&d.UpdatedAt,
	)
	return d, err
}
