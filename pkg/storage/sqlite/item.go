package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite/schema/gen/table"
)

type itemRow struct {
	model.Item
	ProviderIDs []model.ItemProviderID
}

func itemSelect() sqlite.SelectStatement {
	return sqlite.
		SELECT(
			table.Item.AllColumns,
			table.ItemProviderID.AllColumns,
		).
		FROM(
			table.Item.LEFT_JOIN(
				table.ItemProviderID,
				table.ItemProviderID.ItemID.EQ(table.Item.ID),
			),
		)
}

// GetItem returns an item with its provider ids
func (s *SQLite) GetItem(ctx context.Context, id uuid.UUID) (*host.Item, error) {
	stmt := itemSelect().
		WHERE(table.Item.ID.EQ(sqlite.String(id.String())))

	var row itemRow
	err := stmt.QueryContext(ctx, s.db, &row)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return toItem(row)
}

// ListItems lists every item of a kind
func (s *SQLite) ListItems(ctx context.Context, kind host.Kind) ([]*host.Item, error) {
	stmt := itemSelect().
		WHERE(table.Item.Kind.EQ(sqlite.String(string(kind)))).
		ORDER_BY(table.Item.CreatedAt.ASC(), table.Item.ID.ASC())

	rows := make([]itemRow, 0)
	err := stmt.QueryContext(ctx, s.db, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := make([]*host.Item, 0, len(rows))
	for _, row := range rows {
		item, err := toItem(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// SaveItem creates or replaces an item along with its provider ids
func (s *SQLite) SaveItem(ctx context.Context, item host.Item) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("invalid item kind %q", item.Kind)
	}
	if item.ID == uuid.Nil {
		return errors.New("item id is required")
	}

	now := time.Now().UTC()
	m := fromItem(item)
	m.CreatedAt = &now
	m.UpdatedAt = &now

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	updateColumns := table.Item.MutableColumns.Except(table.Item.CreatedAt)
	stmt := table.Item.
		INSERT(table.Item.AllColumns).
		MODEL(m).
		ON_CONFLICT(table.Item.ID).
		DO_UPDATE(sqlite.SET(updateColumns.SET(sqlite.ROW(excluded(table.Item.EXCLUDED.MutableColumns.Except(table.Item.EXCLUDED.CreatedAt))...))))

	if _, err := stmt.ExecContext(ctx, tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save item: %w", err)
	}

	if err := replaceProviderIDs(ctx, tx, m.ID, item.ProviderIDs); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// SetProviderIDs replaces the provider ids of an existing item
func (s *SQLite) SetProviderIDs(ctx context.Context, id uuid.UUID, ids map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt := table.Item.
		UPDATE().
		SET(table.Item.UpdatedAt.SET(sqlite.TimestampExp(sqlite.String(time.Now().UTC().Format(timestampFormat))))).
		WHERE(table.Item.ID.EQ(sqlite.String(id.String())))

	result, err := stmt.ExecContext(ctx, tx)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to touch item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return storage.ErrNotFound
	}

	if err := replaceProviderIDs(ctx, tx, id.String(), ids); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func replaceProviderIDs(ctx context.Context, tx qrm.Executable, itemID string, ids map[string]string) error {
	deleteStmt := table.ItemProviderID.
		DELETE().
		WHERE(table.ItemProviderID.ItemID.EQ(sqlite.String(itemID)))
	if _, err := deleteStmt.ExecContext(ctx, tx); err != nil {
		return fmt.Errorf("failed to clear provider ids: %w", err)
	}

	rows := make([]model.ItemProviderID, 0, len(ids))
	for provider, value := range ids {
		if value == "" {
			continue
		}
		rows = append(rows, model.ItemProviderID{
			ItemID:   itemID,
			Provider: provider,
			Value:    value,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	insertStmt := table.ItemProviderID.
		INSERT(table.ItemProviderID.AllColumns).
		MODELS(rows)
	if _, err := insertStmt.ExecContext(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert provider ids: %w", err)
	}
	return nil
}

func toItem(row itemRow) (*host.Item, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid item id %q: %w", row.ID, err)
	}

	item := &host.Item{
		ID:              id,
		Kind:            host.Kind(row.Kind),
		Name:            row.Name,
		PresentationKey: row.PresentationKey,
	}

	if row.ParentID != nil {
		parent, err := uuid.Parse(*row.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent id %q: %w", *row.ParentID, err)
		}
		item.ParentID = &parent
	}
	if row.IndexNumber != nil {
		n := int(*row.IndexNumber)
		item.IndexNumber = &n
	}
	if row.UpdatedAt != nil {
		item.UpdatedAt = *row.UpdatedAt
	}
	if len(row.ProviderIDs) > 0 {
		item.ProviderIDs = make(map[string]string, len(row.ProviderIDs))
		for _, p := range row.ProviderIDs {
			item.ProviderIDs[p.Provider] = p.Value
		}
	}

	return item, nil
}

func fromItem(item host.Item) model.Item {
	m := model.Item{
		ID:              item.ID.String(),
		Kind:            string(item.Kind),
		Name:            item.Name,
		PresentationKey: item.PresentationKey,
	}
	if item.ParentID != nil {
		parent := item.ParentID.String()
		m.ParentID = &parent
	}
	if item.IndexNumber != nil {
		n := int32(*item.IndexNumber)
		m.IndexNumber = &n
	}
	return m
}
