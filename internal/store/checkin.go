package store

import (
	"context"
	"fmt"
	"time"

	"matchfoundry/internal/utils"
	"matchfoundry/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	needTableName     = "matchfoundry.needs"
	learningTableName = "matchfoundry.learnings"
)

var (
	needColumns     = utils.StructTagValues(types.Need{})
	learningColumns = utils.StructTagValues(types.Learning{})
)

// CheckinRepository owns the needs and learnings tables together because a
// check-in replaces both active sets in one transaction.
type CheckinRepository struct {
	pool *pgxpool.Pool
}

func NewCheckinRepository(pool *pgxpool.Pool) *CheckinRepository {
	return &CheckinRepository{pool: pool}
}

func (r *CheckinRepository) Need(ctx context.Context, needID string) (*types.Need, error) {
	query, args, err := psql().
		Select(needColumns...).
		From(needTableName).
		Where(sq.Eq{"id": needID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate need query: %w", err)
	}

	var need types.Need
	err = pgxscan.Get(ctx, r.pool, &need, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNeedNotFound
		}
		return nil, fmt.Errorf("failed to fetch need: %w", err)
	}

	return &need, nil
}

func (r *CheckinRepository) NeedsByIDs(ctx context.Context, needIDs []string) ([]*types.Need, error) {
	if len(needIDs) == 0 {
		return []*types.Need{}, nil
	}

	query, args, err := psql().
		Select(needColumns...).
		From(needTableName).
		Where(sq.Eq{"id": needIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate needs-by-ids query: %w", err)
	}

	var needs []*types.Need
	err = pgxscan.Select(ctx, r.pool, &needs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch needs by ids: %w", err)
	}

	return needs, nil
}

func (r *CheckinRepository) ActiveNeeds(ctx context.Context) ([]*types.Need, error) {
	query, args, err := psql().
		Select(needColumns...).
		From(needTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate active needs query: %w", err)
	}

	var needs = make([]*types.Need, 0)
	err = pgxscan.Select(ctx, r.pool, &needs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active needs: %w", err)
	}

	return needs, nil
}

func (r *CheckinRepository) ActiveLearnings(ctx context.Context) ([]*types.Learning, error) {
	query, args, err := psql().
		Select(learningColumns...).
		From(learningTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate active learnings query: %w", err)
	}

	var learnings = make([]*types.Learning, 0)
	err = pgxscan.Select(ctx, r.pool, &learnings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active learnings: %w", err)
	}

	return learnings, nil
}

// ReplaceActive deactivates every prior need and learning for the user and
// inserts the new active sets, all in one transaction. Prior rows are kept
// (deactivated, never deleted) and the check-in generation increments so each
// replacement is auditable.
func (r *CheckinRepository) ReplaceActive(ctx context.Context, userID string, needs, learnings []types.CheckinItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	generation, err := nextGeneration(ctx, tx, userID)
	if err != nil {
		return err
	}

	for _, table := range []string{needTableName, learningTableName} {
		query, args, err := psql().
			Update(table).
			Set("is_active", false).
			Where(sq.Eq{"user_id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate deactivate query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to deactivate prior entries: %w", err)
		}
	}

	now := time.Now()

	if len(needs) > 0 {
		builder := psql().Insert(needTableName).Columns(needColumns...)
		for _, item := range needs {
			builder = builder.Values(utils.NanoID(), userID, item.Label, types.ParseCategory(item.Category), true, generation, now)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert needs query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert needs: %w", err)
		}
	}

	if len(learnings) > 0 {
		builder := psql().Insert(learningTableName).Columns(learningColumns...)
		for _, item := range learnings {
			builder = builder.Values(utils.NanoID(), userID, item.Label, types.ParseCategory(item.Category), true, generation, now)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert learnings query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert learnings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func nextGeneration(ctx context.Context, tx pgx.Tx, userID string) (int, error) {
	var generation int
	query := fmt.Sprintf(
		"SELECT GREATEST((SELECT COALESCE(MAX(checkin_generation), 0) FROM %s WHERE user_id = $1), (SELECT COALESCE(MAX(checkin_generation), 0) FROM %s WHERE user_id = $1)) + 1",
		needTableName, learningTableName,
	)
	if err := tx.QueryRow(ctx, query, userID).Scan(&generation); err != nil {
		return 0, fmt.Errorf("failed to compute checkin generation: %w", err)
	}
	return generation, nil
}

func (r *CheckinRepository) CountActiveNeeds(ctx context.Context) (int64, error) {
	return r.countActive(ctx, needTableName)
}

func (r *CheckinRepository) CountActiveLearnings(ctx context.Context) (int64, error) {
	return r.countActive(ctx, learningTableName)
}

func (r *CheckinRepository) countActive(ctx context.Context, table string) (int64, error) {
	query, args, err := psql().
		Select("count(*)").
		From(table).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active rows: %w", err)
	}

	return count, nil
}

func (r *CheckinRepository) ActiveNeedCountsByCategory(ctx context.Context) ([]*types.CategoryCount, error) {
	return r.activeCountsByCategory(ctx, needTableName)
}

func (r *CheckinRepository) ActiveLearningCountsByCategory(ctx context.Context) ([]*types.CategoryCount, error) {
	return r.activeCountsByCategory(ctx, learningTableName)
}

func (r *CheckinRepository) activeCountsByCategory(ctx context.Context, table string) ([]*types.CategoryCount, error) {
	query, args, err := psql().
		Select("category", "count(*) as count").
		From(table).
		Where(sq.Eq{"is_active": true}).
		GroupBy("category").
		OrderBy("category asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate category count query: %w", err)
	}

	var counts = make([]*types.CategoryCount, 0)
	err = pgxscan.Select(ctx, r.pool, &counts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category counts: %w", err)
	}

	return counts, nil
}
