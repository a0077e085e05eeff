package rules

import (
	"context"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
)

// System defines the public contract for rule domain operations.
type System interface {
	Handler(docs documents.System, rt *pipeline.Runtime) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Rule], error)

	Find(ctx context.Context, id uuid.UUID) (*Rule, error)

	// CreateBatch persists a set of rules in a single transaction.
	CreateBatch(ctx context.Context, cmds []CreateCommand) ([]Rule, error)

	Toggle(ctx context.Context, id uuid.UUID) (*Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByPolicySpace removes every rule in a policy space and
	// returns the number removed. ErrNotFound when the space holds none.
	DeleteByPolicySpace(ctx context.Context, policySpaceID string) (int, error)
}
