package store

import (
	"context"
	"fmt"
	"time"

	"pinnaclepm/internal/utils"
	"pinnaclepm/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationTableName = "pinnaclepm.applications"

var applicationColumns = utils.StructTagValues(types.Application{})

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *types.Application) error {
	if app.ID == "" {
		app.ID = utils.NanoID()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now()
	}

	query, args, err := psql().
		Insert(applicationTableName).
		SetMap(utils.StructToMap(app)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create application query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create application")
}

func (r *ApplicationRepository) ApplicationByConfirmationCode(ctx context.Context, code string) (*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"confirmation_code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application query: %w", err)
	}

	var app types.Application
	err = pgxscan.Get(ctx, r.pool, &app, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	return &app, nil
}

func (r *ApplicationRepository) LatestApplications(ctx context.Context, limit uint64) ([]*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		OrderBy("submitted_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest applications query: %w", err)
	}

	out := make([]*types.Application, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch latest applications: %w", err)
	}

	return out, nil
}
