package documents_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", documents.ErrNotFound, http.StatusNotFound},
		{"duplicate", documents.ErrDuplicate, http.StatusConflict},
		{"file too large", documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid file", documents.ErrInvalidFile, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", documents.ErrNotFound), http.StatusNotFound},
		{"wrapped duplicate", fmt.Errorf("insert failed: %w", documents.ErrDuplicate), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := documents.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		values := url.Values{
			"policy_space_id": {"space-1"},
			"status":          {"uploaded"},
			"filename":        {"report"},
			"content_type":    {"application/pdf"},
			"created_by":      {"analyst"},
		}

		f := documents.FiltersFromQuery(values)

		if f.PolicySpaceID == nil || *f.PolicySpaceID != "space-1" {
			t.Errorf("PolicySpaceID = %v, want space-1", f.PolicySpaceID)
		}
		if f.Status == nil || *f.Status != "uploaded" {
			t.Errorf("Status = %v, want uploaded", f.Status)
		}
		if f.Filename == nil || *f.Filename != "report" {
			t.Errorf("Filename = %v, want report", f.Filename)
		}
		if f.ContentType == nil || *f.ContentType != "application/pdf" {
			t.Errorf("ContentType = %v, want application/pdf", f.ContentType)
		}
		if f.CreatedBy == nil || *f.CreatedBy != "analyst" {
			t.Errorf("CreatedBy = %v, want analyst", f.CreatedBy)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := documents.FiltersFromQuery(url.Values{})

		if f.PolicySpaceID != nil {
			t.Errorf("PolicySpaceID = %v, want nil", f.PolicySpaceID)
		}
		if f.Status != nil {
			t.Errorf("Status = %v, want nil", f.Status)
		}
		if f.Filename != nil {
			t.Errorf("Filename = %v, want nil", f.Filename)
		}
		if f.ContentType != nil {
			t.Errorf("ContentType = %v, want nil", f.ContentType)
		}
		if f.CreatedBy != nil {
			t.Errorf("CreatedBy = %v, want nil", f.CreatedBy)
		}
	})

	t.Run("partial params", func(t *testing.T) {
		values := url.Values{
			"status":   {"processed"},
			"filename": {"regulation"},
		}

		f := documents.FiltersFromQuery(values)

		if f.Status == nil || *f.Status != "processed" {
			t.Errorf("Status = %v, want processed", f.Status)
		}
		if f.Filename == nil || *f.Filename != "regulation" {
			t.Errorf("Filename = %v, want regulation", f.Filename)
		}
		if f.PolicySpaceID != nil {
			t.Errorf("PolicySpaceID = %v, want nil", f.PolicySpaceID)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "documents", "d").
		Project("policy_space_id", "PolicySpaceID").
		Project("status", "Status").
		Project("filename", "Filename").
		Project("content_type", "ContentType").
		Project("created_by", "CreatedBy")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := documents.Filters{}
		f.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT d.policy_space_id, d.status, d.filename, d.content_type, d.created_by FROM public.documents d"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("status equals filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := documents.Filters{Status: ptr("uploaded")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 {
			t.Fatalf("args length = %d, want 1", len(args))
		}
		if v, ok := args[0].(*string); !ok || *v != "uploaded" {
			t.Errorf("args[0] = %v, want *uploaded", args[0])
		}
	})

	t.Run("filename contains filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := documents.Filters{Filename: ptr("report")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 || args[0] != "%report%" {
			t.Errorf("args = %v, want [%%report%%]", args)
		}
	})

	t.Run("multiple filters combine with AND", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := documents.Filters{
			PolicySpaceID: ptr("space-1"),
			Status:        ptr("uploaded"),
			Filename:      ptr("report"),
		}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 3 {
			t.Errorf("args length = %d, want 3", len(args))
		}
	})

	t.Run("content_type equals filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		f := documents.Filters{ContentType: ptr("application/pdf")}
		f.Apply(b)
		_, args := b.Build()

		if len(args) != 1 {
			t.Fatalf("args length = %d, want 1", len(args))
		}
		if v, ok := args[0].(*string); !ok || *v != "application/pdf" {
			t.Errorf("args[0] = %v, want *application/pdf", args[0])
		}
	})
}
