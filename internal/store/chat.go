package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchfoundry/internal/chat"
	"matchfoundry/internal/utils"
	"matchfoundry/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	chatTableName = "matchfoundry.coffee_chats"
	slotTableName = "matchfoundry.proposed_slots"
)

var (
	chatColumns = utils.StructTagValues(types.CoffeeChat{})
	slotColumns = utils.StructTagValues(types.ProposedSlot{})
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) CreateChat(ctx context.Context, c *types.CoffeeChat) error {
	now := time.Now()
	c.ID = utils.NanoID()
	c.CreatedAt = now
	c.UpdatedAt = now

	query, args, err := psql().
		Insert(chatTableName).
		SetMap(utils.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create chat query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create chat")
}

func (r *ChatRepository) Chat(ctx context.Context, chatID string) (*types.CoffeeChat, error) {
	query, args, err := psql().
		Select(chatColumns...).
		From(chatTableName).
		Where(sq.Eq{"id": chatID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chat query: %w", err)
	}

	var c types.CoffeeChat
	err = pgxscan.Get(ctx, r.pool, &c, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to fetch chat: %w", err)
	}

	return &c, nil
}

func (r *ChatRepository) ChatsByUser(ctx context.Context, userID string, asExpert bool) ([]*types.CoffeeChat, error) {
	column := "requester_id"
	if asExpert {
		column = "expert_id"
	}

	query, args, err := psql().
		Select(chatColumns...).
		From(chatTableName).
		Where(sq.Eq{column: userID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chats-by-user query: %w", err)
	}

	var chats = make([]*types.CoffeeChat, 0)
	err = pgxscan.Select(ctx, r.pool, &chats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}

	return chats, nil
}

func (r *ChatRepository) Slot(ctx context.Context, slotID string) (*types.ProposedSlot, error) {
	query, args, err := psql().
		Select(slotColumns...).
		From(slotTableName).
		Where(sq.Eq{"id": slotID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate slot query: %w", err)
	}

	var slot types.ProposedSlot
	err = pgxscan.Get(ctx, r.pool, &slot, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to fetch slot: %w", err)
	}

	return &slot, nil
}

func (r *ChatRepository) SlotsByChat(ctx context.Context, chatID string) ([]*types.ProposedSlot, error) {
	query, args, err := psql().
		Select(slotColumns...).
		From(slotTableName).
		Where(sq.Eq{"coffee_chat_id": chatID}).
		OrderBy("start_time asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate slots-by-chat query: %w", err)
	}

	var slots = make([]*types.ProposedSlot, 0)
	err = pgxscan.Select(ctx, r.pool, &slots, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}

	return slots, nil
}

func (r *ChatRepository) SlotsByChats(ctx context.Context, chatIDs []string) ([]*types.ProposedSlot, error) {
	if len(chatIDs) == 0 {
		return []*types.ProposedSlot{}, nil
	}

	query, args, err := psql().
		Select(slotColumns...).
		From(slotTableName).
		Where(sq.Eq{"coffee_chat_id": chatIDs}).
		OrderBy("start_time asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate slots-by-chats query: %w", err)
	}

	var slots = make([]*types.ProposedSlot, 0)
	err = pgxscan.Select(ctx, r.pool, &slots, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}

	return slots, nil
}

func (r *ChatRepository) AddSlots(ctx context.Context, slots []*types.ProposedSlot) error {
	if len(slots) == 0 {
		return nil
	}

	now := time.Now()
	builder := psql().Insert(slotTableName).Columns(slotColumns...)
	for _, slot := range slots {
		slot.ID = utils.NanoID()
		slot.CreatedAt = now
		builder = builder.Values(slot.ID, slot.CoffeeChatID, slot.StartTime, slot.EndTime, slot.Status, slot.CreatedAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert slots query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert slots")
}

// ApplySelection commits a resolved slot choice as one transaction. The chat
// update is guarded on status = proposed, so of two concurrent selections only
// the first commit succeeds; the loser surfaces ErrChatAlreadyScheduled.
func (r *ChatRepository) ApplySelection(ctx context.Context, sel *chat.Selection) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	chatQuery, chatArgs, err := psql().
		Update(chatTableName).
		Set("status", types.ChatStatusScheduled).
		Set("chosen_slot_id", sel.SlotID).
		Set("meeting_link", sel.MeetingLink).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": sel.ChatID, "status": types.ChatStatusProposed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate schedule chat query: %w", err)
	}

	tag, err := tx.Exec(ctx, chatQuery, chatArgs...)
	if err != nil {
		return fmt.Errorf("failed to schedule chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status types.ChatStatus
		checkQuery, checkArgs, err := psql().
			Select("status").
			From(chatTableName).
			Where(sq.Eq{"id": sel.ChatID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate chat status query: %w", err)
		}

		err = tx.QueryRow(ctx, checkQuery, checkArgs...).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return types.ErrChatNotFound
			}
			return fmt.Errorf("failed to check chat status: %w", err)
		}
		return types.ErrChatAlreadyScheduled
	}

	selectQuery, selectArgs, err := psql().
		Update(slotTableName).
		Set("status", types.SlotStatusSelected).
		Where(sq.Eq{"id": sel.SlotID, "coffee_chat_id": sel.ChatID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate select slot query: %w", err)
	}

	tag, err = tx.Exec(ctx, selectQuery, selectArgs...)
	if err != nil {
		return fmt.Errorf("failed to mark slot selected: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrSlotNotFound
	}

	if len(sel.ExpiredSlotIDs) > 0 {
		expireQuery, expireArgs, err := psql().
			Update(slotTableName).
			Set("status", types.SlotStatusExpired).
			Where(sq.Eq{"coffee_chat_id": sel.ChatID}).
			Where(sq.NotEq{"id": sel.SlotID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate expire slots query: %w", err)
		}

		if _, err := tx.Exec(ctx, expireQuery, expireArgs...); err != nil {
			return fmt.Errorf("failed to expire remaining slots: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ChatRepository) CountByStatus(ctx context.Context, status types.ChatStatus) (int64, error) {
	query, args, err := psql().
		Select("count(*)").
		From(chatTableName).
		Where(sq.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate chat count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chats: %w", err)
	}

	return count, nil
}
