package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct{}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, q database.Querier, id int64) (user.User, error) {
	query := `SELECT id, name, role FROM users WHERE id = $1`

	var (
		u    user.User
		role string
	)
	if err := q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}
	u.Role = user.Role(role)

	return u, nil
}

// Descriptors implements user.UserRepository.
func (r *userRepositoryImpl) Descriptors(ctx context.Context, q database.Querier, cache user.DescriptorCache, ids []int64) error {
	missing := cache.Missing(ids...)
	if len(missing) == 0 {
		return nil
	}

	rows, err := q.Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, missing)
	if err != nil {
		return fmt.Errorf("failed to query user descriptors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d user.Descriptor
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return fmt.Errorf("failed to scan user descriptor: %w", err)
		}
		cache[d.ID] = d
	}

	return rows.Err()
}

func NewUserRepository() user.UserRepository {
	return &userRepositoryImpl{}
}
