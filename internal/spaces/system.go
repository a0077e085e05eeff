package spaces

import (
	"context"

	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
)

// System defines the public contract for policy space operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[PolicySpace], error)

	Find(ctx context.Context, id string) (*PolicySpace, error)
	Create(ctx context.Context, cmd CreateCommand) (*PolicySpace, error)
	Update(ctx context.Context, id string, cmd UpdateCommand) (*PolicySpace, error)
	Toggle(ctx context.Context, id string) (*PolicySpace, error)
	Delete(ctx context.Context, id string) error
}
