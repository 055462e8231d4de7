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

// GetUserData returns the watch state of a user for an item
func (s *SQLite) GetUserData(ctx context.Context, userID, itemID uuid.UUID) (*host.UserData, error) {
	stmt := table.UserData.
		SELECT(table.UserData.AllColumns).
		FROM(table.UserData).
		WHERE(
			table.UserData.UserID.EQ(sqlite.String(userID.String())).
				AND(table.UserData.ItemID.EQ(sqlite.String(itemID.String()))),
		)

	var row model.UserData
	err := stmt.QueryContext(ctx, s.db, &row)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user data: %w", err)
	}

	return &host.UserData{
		UserID:                userID,
		ItemID:                itemID,
		Played:                row.Played,
		PlaybackPositionTicks: row.PlaybackPositionTicks,
		PlayCount:             int(row.PlayCount),
		LastPlayedDate:        row.LastPlayedDate,
		IsFavorite:            row.IsFavorite,
		Rating:                row.Rating,
		UpdatedAt:             row.UpdatedAt,
	}, nil
}

// SaveUserData creates or replaces the watch state of a user for an item.
// A zero UpdatedAt is stamped with the current time.
func (s *SQLite) SaveUserData(ctx context.Context, data host.UserData) error {
	updatedAt := data.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	row := model.UserData{
		UserID:                data.UserID.String(),
		ItemID:                data.ItemID.String(),
		Played:                data.Played,
		PlaybackPositionTicks: data.PlaybackPositionTicks,
		PlayCount:             int32(data.PlayCount),
		LastPlayedDate:        data.LastPlayedDate,
		IsFavorite:            data.IsFavorite,
		Rating:                data.Rating,
		UpdatedAt:             updatedAt,
	}

	stmt := table.UserData.
		INSERT(table.UserData.AllColumns).
		MODEL(row).
		ON_CONFLICT(table.UserData.UserID, table.UserData.ItemID).
		DO_UPDATE(sqlite.SET(table.UserData.MutableColumns.SET(sqlite.ROW(excluded(table.UserData.EXCLUDED.MutableColumns)...))))

	if _, err := s.handleInsert(ctx, stmt); err != nil {
		return fmt.Errorf("failed to save user data: %w", err)
	}
	return nil
}
