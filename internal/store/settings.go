package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pinnaclepm/internal/utils"
	"pinnaclepm/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsTableName = "pinnaclepm.settings"

// settingsRow stores the whole settings document as one jsonb blob. The
// newest row wins; older rows are kept as a change history.
type settingsRow struct {
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

var settingsColumns = utils.StructTagValues(settingsRow{})

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Settings returns the most recently written settings document.
func (r *SettingsRepository) Settings(ctx context.Context) (types.Settings, error) {
	query, args, err := psql().
		Select(settingsColumns...).
		From(settingsTableName).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.Settings{}, fmt.Errorf("failed to generate settings query: %w", err)
	}

	var row settingsRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return types.Settings{}, types.ErrSettingsNotFound
		}
		return types.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}

	var settings types.Settings
	if err := json.Unmarshal(row.Data, &settings); err != nil {
		return types.Settings{}, fmt.Errorf("failed to decode settings document: %w", err)
	}

	return settings, nil
}

// SaveSettings writes a new settings row. Readers always take the latest
// row, so concurrent writers resolve to last-write-wins.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings types.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings document: %w", err)
	}

	query, args, err := psql().
		Insert(settingsTableName).
		Columns("id", "data", "updated_at").
		Values(utils.NanoID(), data, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate settings insert: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to save settings")
}
