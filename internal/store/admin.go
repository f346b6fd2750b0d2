package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pinnaclepm/internal/utils"
	"pinnaclepm/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const adminTableName = "pinnaclepm.admin_users"

var adminColumns = utils.StructTagValues(types.AdminUser{})

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) AdminByEmail(ctx context.Context, email string) (*types.AdminUser, error) {
	query, args, err := psql().
		Select(adminColumns...).
		From(adminTableName).
		Where(sq.Eq{"email": normalizeEmail(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin query: %w", err)
	}

	var admin types.AdminUser
	err = pgxscan.Get(ctx, r.pool, &admin, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin user: %w", err)
	}

	return &admin, nil
}

// Authenticate checks the email/password pair against the stored account.
// A missing account and a wrong password both come back as
// ErrInvalidCredentials so the response cannot leak which one it was.
func (r *AdminRepository) Authenticate(ctx context.Context, email, password string) (*types.AdminUser, error) {
	admin, err := r.AdminByEmail(ctx, email)
	if err != nil {
		if err == types.ErrAdminNotFound {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	return admin, nil
}

// CreateAdmin stores a new operator account with the password hashed.
func (r *AdminRepository) CreateAdmin(ctx context.Context, email, password string) (*types.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	admin := &types.AdminUser{
		ID:           utils.NanoID(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query, args, err := psql().
		Insert(adminTableName).
		SetMap(utils.StructToMap(admin)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate create admin query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	return admin, nil
}

// UpdateCredentials replaces the account's email and password in one write.
func (r *AdminRepository) UpdateCredentials(ctx context.Context, adminID, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	query, args, err := psql().
		Update(adminTableName).
		Set("email", normalizeEmail(email)).
		Set("password_hash", string(hash)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": adminID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update credentials query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to update admin credentials")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
