// Package accounts is the persistence boundary for Account records, keyed by
// unique email.
package accounts

import (
	"context"

	"github.com/linkup-social/linkup/internal/server/models"
)

// Repository persists accounts. Implementations map storage-level failures to
// the sentinel errors in internal/common:
//
//   - Create returns common.ErrAlreadyExists when the email is taken.
//   - GetByEmail / GetByID / GetByEmailAndOTP return common.ErrNotFound when
//     no row matches.
//   - Update returns common.ErrVersionConflict when the record changed since
//     it was read.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmailAndOTP(ctx context.Context, email, code string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}
