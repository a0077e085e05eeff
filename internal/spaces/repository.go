package spaces

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a policy space repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "spaces"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[PolicySpace], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count policy spaces: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	spaces, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSpace)
	if err != nil {
		return nil, fmt.Errorf("query policy spaces: %w", err)
	}

	result := pagination.NewPageResult(spaces, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*PolicySpace, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	ps, err := repository.QueryOne(ctx, r.db, q, args, scanSpace)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &ps, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*PolicySpace, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidSpace)
	}

	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}

	q := `
		INSERT INTO policy_spaces(id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, created_by, is_active, created_at, updated_at`

	args := []any{id, cmd.Name, cmd.Description, cmd.CreatedBy}

	ps, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (PolicySpace, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSpace)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("policy space created", "id", ps.ID, "name", ps.Name)
	return &ps, nil
}

func (r *repo) Update(ctx context.Context, id string, cmd UpdateCommand) (*PolicySpace, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidSpace)
	}

	q := `
		UPDATE policy_spaces
		SET name = $1, description = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, name, description, created_by, is_active, created_at, updated_at`

	args := []any{cmd.Name, cmd.Description, id}

	ps, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (PolicySpace, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSpace)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("policy space updated", "id", ps.ID, "name", ps.Name)
	return &ps, nil
}

func (r *repo) Toggle(ctx context.Context, id string) (*PolicySpace, error) {
	q := `
		UPDATE policy_spaces
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, created_by, is_active, created_at, updated_at`

	ps, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (PolicySpace, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanSpace)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("policy space toggled", "id", ps.ID, "active", ps.IsActive)
	return &ps, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM policy_spaces WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("policy space deleted", "id", id)
	return nil
}
