package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nikhilakjoshi/reg-interpret-server/internal/documents"
	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/pagination"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/query"
	"github.com/nikhilakjoshi/reg-interpret-server/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a rule repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "rules"),
		pagination: pagination,
	}
}

func (r *repo) Handler(docs documents.System, rt *pipeline.Runtime) *Handler {
	return NewHandler(r, docs, rt, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Rule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "RuleName", "RuleDescription")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rules, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}

	result := pagination.NewPageResult(rules, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Rule, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rule, err := repository.QueryOne(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rule, nil
}

const insertRule = `
	INSERT INTO rules(id, policy_space_id, document_id, rule_name, rule_description, rule_content, rule_type, severity, generated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, policy_space_id, document_id, rule_name, rule_description, rule_content, rule_type, severity, generated_by, is_active, created_at, updated_at`

func (r *repo) CreateBatch(ctx context.Context, cmds []CreateCommand) ([]Rule, error) {
	for _, cmd := range cmds {
		if cmd.PolicySpaceID == "" {
			return nil, fmt.Errorf("%w: policy_space_id required", ErrInvalidRule)
		}
		if cmd.RuleName == "" {
			return nil, fmt.Errorf("%w: rule_name required", ErrInvalidRule)
		}
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Rule, error) {
		rules := make([]Rule, 0, len(cmds))
		for _, cmd := range cmds {
			args := []any{
				uuid.New(),
				cmd.PolicySpaceID,
				cmd.DocumentID,
				cmd.RuleName,
				cmd.RuleDescription,
				[]byte(cmd.RuleContent),
				cmd.RuleType,
				cmd.Severity,
				cmd.GeneratedBy,
			}

			rule, err := repository.QueryOne(ctx, tx, insertRule, args, scanRule)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
		return rules, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("rules created", "count", len(created))
	return created, nil
}

func (r *repo) Toggle(ctx context.Context, id uuid.UUID) (*Rule, error) {
	q := `
		UPDATE rules
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING id, policy_space_id, document_id, rule_name, rule_description, rule_content, rule_type, severity, generated_by, is_active, created_at, updated_at`

	rule, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Rule, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanRule)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("rule toggled", "id", id, "active", rule.IsActive)
	return &rule, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM rules WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("rule deleted", "id", id)
	return nil
}

func (r *repo) DeleteByPolicySpace(ctx context.Context, policySpaceID string) (int, error) {
	result, err := r.db.ExecContext(
		ctx,
		"DELETE FROM rules WHERE policy_space_id = $1",
		policySpaceID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete rules by policy space: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return 0, fmt.Errorf("%w: no rules in policy space %q", ErrNotFound, policySpaceID)
	}

	r.logger.Info("rules deleted by policy space", "space", policySpaceID, "count", affected)
	return int(affected), nil
}
