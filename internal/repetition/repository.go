package repetition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/revisit/internal/database"
)

//go:generate mockgen -source=repository.go -destination=../mocks/repetition/mock_repository.go -package=mock_repetition

// ApplyFunc computes the reviewed state of a locked schedule item.
type ApplyFunc func(item ScheduleItem) (ScheduleItem, ReviewHistoryEntry)

// Repository stores schedule items and their review history.
type Repository interface {
	Create(ctx context.Context, item ScheduleItem) error
	FindByUser(ctx context.Context, userID string) ([]ScheduleItem, error)
	FindDue(ctx context.Context, userID string, now time.Time) ([]ScheduleItem, error)
	FindOne(ctx context.Context, userID string, id Identifier) (ScheduleItem, error)
	Delete(ctx context.Context, userID string, id Identifier) (ScheduleItem, error)
	RecordReview(ctx context.Context, userID string, id Identifier, apply ApplyFunc) (ScheduleItem, ReviewHistoryEntry, error)
	FindHistory(ctx context.Context, scheduleItemID string) ([]ReviewHistoryEntry, error)
	FindHistoryByUser(ctx context.Context, userID string) ([]ReviewHistoryEntry, error)
}

// DBRepository implements Repository on MySQL or SQLite.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

const scheduleItemColumns = "id, user_id, item_id, slug, name, difficulty, topic, review_level, last_reviewed_at, due_date, created_at, updated_at"

const historyColumns = "id, schedule_item_id, user_id, reviewed_at, was_successful, level_before, level_after, review_option"

// Create inserts a new schedule item. A second item for the same user and
// reviewable item is rejected with ErrAlreadyExists.
func (r *DBRepository) Create(ctx context.Context, item ScheduleItem) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM schedule_items WHERE user_id = ? AND (item_id = ? OR slug = ?)",
			item.UserID, item.ItemID, item.Slug,
		); err != nil {
			return fmt.Errorf("count schedule items: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("item %d for user %s: %w", item.ItemID, item.UserID, ErrAlreadyExists)
		}

		if _, err := tx.NamedExecContext(ctx,
			"INSERT INTO schedule_items ("+scheduleItemColumns+") VALUES "+
				"(:id, :user_id, :item_id, :slug, :name, :difficulty, :topic, :review_level, :last_reviewed_at, :due_date, :created_at, :updated_at)",
			item,
		); err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("item %d for user %s: %w", item.ItemID, item.UserID, ErrAlreadyExists)
			}
			return fmt.Errorf("insert schedule item: %w", err)
		}
		return nil
	})
}

// FindByUser returns every schedule item of the user ordered by due date.
func (r *DBRepository) FindByUser(ctx context.Context, userID string) ([]ScheduleItem, error) {
	items := []ScheduleItem{}
	if err := r.db.SelectContext(ctx, &items,
		"SELECT "+scheduleItemColumns+" FROM schedule_items WHERE user_id = ? ORDER BY due_date, id",
		userID,
	); err != nil {
		return nil, fmt.Errorf("load schedule items: %w", err)
	}
	return items, nil
}

// FindDue returns the user's items due at or before now, earliest first.
func (r *DBRepository) FindDue(ctx context.Context, userID string, now time.Time) ([]ScheduleItem, error) {
	items := []ScheduleItem{}
	if err := r.db.SelectContext(ctx, &items,
		"SELECT "+scheduleItemColumns+" FROM schedule_items WHERE user_id = ? AND due_date IS NOT NULL AND due_date <= ? ORDER BY due_date, id",
		userID, now,
	); err != nil {
		return nil, fmt.Errorf("load due schedule items: %w", err)
	}
	return items, nil
}

// FindOne resolves an identifier to one of the user's schedule items.
func (r *DBRepository) FindOne(ctx context.Context, userID string, id Identifier) (ScheduleItem, error) {
	return r.resolve(ctx, r.db, userID, id, "")
}

// Delete removes a schedule item together with its review history.
func (r *DBRepository) Delete(ctx context.Context, userID string, id Identifier) (ScheduleItem, error) {
	var deleted ScheduleItem
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		item, err := r.resolve(ctx, tx, userID, id, database.LockClause(r.db))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM review_history WHERE schedule_item_id = ?", item.ID); err != nil {
			return fmt.Errorf("delete review history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_items WHERE id = ?", item.ID); err != nil {
			return fmt.Errorf("delete schedule item: %w", err)
		}
		deleted = item
		return nil
	})
	if err != nil {
		return ScheduleItem{}, err
	}
	return deleted, nil
}

// RecordReview locks the schedule item, applies the review and appends the
// history entry in a single transaction. Concurrent reviews of the same item
// are serialized by the lock.
func (r *DBRepository) RecordReview(ctx context.Context, userID string, id Identifier, apply ApplyFunc) (ScheduleItem, ReviewHistoryEntry, error) {
	var (
		updated ScheduleItem
		entry   ReviewHistoryEntry
	)
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := r.resolve(ctx, tx, userID, id, database.LockClause(r.db))
		if err != nil {
			return err
		}
		if current.ReviewLevel < MinLevel || current.ReviewLevel > MaxLevel {
			return fmt.Errorf("schedule item %s has level %d: %w", current.ID, current.ReviewLevel, ErrInvalidState)
		}

		next, historyEntry := apply(current)
		if historyEntry.LevelBefore != current.ReviewLevel || historyEntry.LevelAfter != next.ReviewLevel {
			return fmt.Errorf("history levels %d->%d do not match item levels %d->%d: %w",
				historyEntry.LevelBefore, historyEntry.LevelAfter, current.ReviewLevel, next.ReviewLevel, ErrInvalidState)
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE schedule_items SET review_level = ?, last_reviewed_at = ?, due_date = ?, updated_at = ? WHERE id = ? AND review_level = ?",
			next.ReviewLevel, next.LastReviewedAt, next.DueDate, next.UpdatedAt, current.ID, current.ReviewLevel,
		)
		if err != nil {
			return fmt.Errorf("update schedule item: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected != 1 {
			return fmt.Errorf("update schedule item %s affected %d rows: %w", current.ID, affected, ErrInvalidState)
		}

		result, err = tx.ExecContext(ctx,
			"INSERT INTO review_history (schedule_item_id, user_id, reviewed_at, was_successful, level_before, level_after, review_option) VALUES (?, ?, ?, ?, ?, ?, ?)",
			historyEntry.ScheduleItemID, historyEntry.UserID, historyEntry.ReviewedAt, historyEntry.WasSuccessful,
			historyEntry.LevelBefore, historyEntry.LevelAfter, historyEntry.ReviewOption,
		)
		if err != nil {
			return fmt.Errorf("insert review history: %w", err)
		}
		if historyEntry.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		updated, entry = next, historyEntry
		return nil
	})
	if err != nil {
		return ScheduleItem{}, ReviewHistoryEntry{}, err
	}
	return updated, entry, nil
}

// FindHistory returns the review history of one schedule item, oldest first.
func (r *DBRepository) FindHistory(ctx context.Context, scheduleItemID string) ([]ReviewHistoryEntry, error) {
	entries := []ReviewHistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries,
		"SELECT "+historyColumns+" FROM review_history WHERE schedule_item_id = ? ORDER BY reviewed_at, id",
		scheduleItemID,
	); err != nil {
		return nil, fmt.Errorf("load review history: %w", err)
	}
	return entries, nil
}

// FindHistoryByUser returns every review the user has submitted, oldest first.
func (r *DBRepository) FindHistoryByUser(ctx context.Context, userID string) ([]ReviewHistoryEntry, error) {
	entries := []ReviewHistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries,
		"SELECT "+historyColumns+" FROM review_history WHERE user_id = ? ORDER BY reviewed_at, id",
		userID,
	); err != nil {
		return nil, fmt.Errorf("load review history of user: %w", err)
	}
	return entries, nil
}

func (r *DBRepository) resolve(ctx context.Context, q sqlx.QueryerContext, userID string, id Identifier, lock string) (ScheduleItem, error) {
	var (
		query string
		args  []any
	)
	switch id.Kind {
	case ByScheduleItemID:
		query = "SELECT " + scheduleItemColumns + " FROM schedule_items WHERE id = ?"
		args = []any{id.ScheduleItemID}
	case ByItemID:
		query = "SELECT " + scheduleItemColumns + " FROM schedule_items WHERE user_id = ? AND item_id = ?"
		args = []any{userID, id.ItemID}
	case BySlug:
		query = "SELECT " + scheduleItemColumns + " FROM schedule_items WHERE user_id = ? AND slug = ?"
		args = []any{userID, id.Slug}
	default:
		return ScheduleItem{}, fmt.Errorf("identifier kind %d: %w", id.Kind, ErrInvalidArgument)
	}

	var item ScheduleItem
	if err := sqlx.GetContext(ctx, q, &item, query+lock, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScheduleItem{}, fmt.Errorf("schedule item %s %s: %w", id.Kind, id, ErrNotFound)
		}
		return ScheduleItem{}, fmt.Errorf("load schedule item: %w", err)
	}
	if item.UserID != userID {
		return ScheduleItem{}, fmt.Errorf("schedule item %s: %w", item.ID, ErrUnauthorized)
	}
	return item, nil
}
