package user

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type UserRepository interface {
	GetByID(ctx context.Context, q database.Querier, id int64) (User, error)
	// Descriptors loads the descriptors of ids into cache.
	Descriptors(ctx context.Context, q database.Querier, cache DescriptorCache, ids []int64) error
}
