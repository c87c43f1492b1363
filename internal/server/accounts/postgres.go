package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/linkup-social/linkup/internal/common"
	"github.com/linkup-social/linkup/internal/dbx"
	"github.com/linkup-social/linkup/internal/server/models"
)

const accountColumns = `id, name, email, password_hash, status, otp_code, otp_expires_at,
		posts_count, followers_count, following_count, revision, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account. The email column carries a unique constraint;
// a duplicate maps to common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (id, name, email, password_hash, status, otp_code, otp_expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING revision, created_at
		 `

	account.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash,
		account.Status, account.OTPCode, account.OTPExpiresAt,
	).Scan(&account.Revision, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmailAndOTP looks an account up by email and outstanding code
// simultaneously; a wrong code is indistinguishable from a missing account.
func (r *PostgresRepository) GetByEmailAndOTP(ctx context.Context, email, code string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 AND otp_code = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email, code))
}

// Update writes the full record guarded by the revision the caller read.
// A stale revision (or a concurrently deleted row) yields
// common.ErrVersionConflict; on success the in-memory revision is bumped to
// match the stored one.
func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {

	query :=
		`UPDATE accounts
		 SET name = $1, password_hash = $2, status = $3, otp_code = $4, otp_expires_at = $5,
		     posts_count = $6, followers_count = $7, following_count = $8,
		     revision = revision + 1
		 WHERE id = $9 AND revision = $10
		 `

	res, err := r.db.ExecContext(ctx, query,
		account.Name, account.PasswordHash, account.Status,
		account.OTPCode, account.OTPExpiresAt,
		account.PostsCount, account.FollowersCount, account.FollowingCount,
		account.ID, account.Revision,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrVersionConflict
	}

	account.Revision++
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash,
		&account.Status, &account.OTPCode, &account.OTPExpiresAt,
		&account.PostsCount, &account.FollowersCount, &account.FollowingCount,
		&account.Revision, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}
