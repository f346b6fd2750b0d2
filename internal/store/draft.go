package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pinnaclepm/internal/utils"
	"pinnaclepm/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftTableName = "pinnaclepm.application_drafts"

type draftRow struct {
	ID          string    `db:"id"`
	CurrentStep int       `db:"current_step"`
	Data        []byte    `db:"data"`
	UpdatedAt   time.Time `db:"updated_at"`
}

var draftColumns = utils.StructTagValues(draftRow{})

type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

func (r *DraftRepository) Draft(ctx context.Context, draftID string) (*types.Draft, error) {
	query, args, err := psql().
		Select(draftColumns...).
		From(draftTableName).
		Where(sq.Eq{"id": draftID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft query: %w", err)
	}

	var row draftRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to fetch draft: %w", err)
	}

	var draft types.Draft
	if err := json.Unmarshal(row.Data, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft document: %w", err)
	}

	draft.ID = row.ID
	draft.CurrentStep = row.CurrentStep

	return &draft, nil
}

// SaveDraft upserts the draft under its fixed key so the applicant can
// resume mid-application.
func (r *DraftRepository) SaveDraft(ctx context.Context, draft *types.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft document: %w", err)
	}

	now := time.Now()

	query, args, err := psql().
		Insert(draftTableName).
		Columns("id", "current_step", "data", "updated_at").
		Values(draft.ID, draft.CurrentStep, data, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET current_step = EXCLUDED.current_step, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate draft upsert: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to save draft")
}

// DeleteDraft removes the draft. Deleting an absent draft is not an error;
// the caller only cares that it is gone.
func (r *DraftRepository) DeleteDraft(ctx context.Context, draftID string) error {
	query, args, err := psql().
		Delete(draftTableName).
		Where(sq.Eq{"id": draftID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate draft delete: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete draft")
}
