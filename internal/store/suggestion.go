package store

import (
	"context"
	"fmt"
	"time"

	"matchfoundry/internal/utils"
	"matchfoundry/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const suggestionTableName = "matchfoundry.match_suggestions"

var suggestionColumns = utils.StructTagValues(types.MatchSuggestion{})

type SuggestionRepository struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepository(pool *pgxpool.Pool) *SuggestionRepository {
	return &SuggestionRepository{pool: pool}
}

// ReplaceAll swaps the entire suggestion table for the fresh batch in a single
// transaction: readers never observe the emptied table, and concurrent
// recomputes degrade to last-writer-wins. Recompute is a wholesale refresh by
// design, so suggestions for needs absent from the batch are flushed too.
func (r *SuggestionRepository) ReplaceAll(ctx context.Context, suggestions []*types.MatchSuggestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	deleteQuery, deleteArgs, err := psql().Delete(suggestionTableName).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete suggestions query: %w", err)
	}

	if _, err := tx.Exec(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("failed to clear suggestions: %w", err)
	}

	if len(suggestions) > 0 {
		now := time.Now()
		builder := psql().Insert(suggestionTableName).Columns(suggestionColumns...)
		for _, s := range suggestions {
			s.ID = utils.NanoID()
			s.CreatedAt = now
			builder = builder.Values(s.ID, s.NeedID, s.ExpertUserID, s.Score, s.Reason, s.Status, s.CreatedAt)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert suggestions query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert suggestions: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SuggestionsForFounder returns suggestions attached to needs owned by the
// founder, best first.
func (r *SuggestionRepository) SuggestionsForFounder(ctx context.Context, userID string) ([]*types.MatchSuggestion, error) {
	query, args, err := psql().
		Select(suggestionColumns...).
		From(suggestionTableName).
		Where(fmt.Sprintf("need_id IN (SELECT id FROM %s WHERE user_id = ?)", needTableName), userID).
		OrderBy("score desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate founder suggestions query: %w", err)
	}

	var suggestions = make([]*types.MatchSuggestion, 0)
	err = pgxscan.Select(ctx, r.pool, &suggestions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch founder suggestions: %w", err)
	}

	return suggestions, nil
}

// SuggestionsForExpert returns incoming suggestions naming the user as the
// expert, newest first.
func (r *SuggestionRepository) SuggestionsForExpert(ctx context.Context, userID string) ([]*types.MatchSuggestion, error) {
	query, args, err := psql().
		Select(suggestionColumns...).
		From(suggestionTableName).
		Where(sq.Eq{"expert_user_id": userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate expert suggestions query: %w", err)
	}

	var suggestions = make([]*types.MatchSuggestion, 0)
	err = pgxscan.Select(ctx, r.pool, &suggestions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expert suggestions: %w", err)
	}

	return suggestions, nil
}

func (r *SuggestionRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := psql().
		Select("count(*)").
		From(suggestionTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate suggestion count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count suggestions: %w", err)
	}

	return count, nil
}
