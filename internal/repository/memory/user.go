package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepository{store: store}
}

// AddUser seeds a user, assigning an id when u.ID is zero.
func (s *Store) AddUser(u user.User) user.User {
	s.write(func(t *tables) {
		if u.ID == 0 {
			u.ID = t.nextID("users")
		} else if u.ID > t.lastID["users"] {
			t.lastID["users"] = u.ID
		}
		t.users[u.ID] = u
	})
	return u
}

func (r *userRepository) GetByID(ctx context.Context, q database.Querier, id int64) (user.User, error) {
	var (
		u  user.User
		ok bool
	)
	r.store.readFor(q, func(t *tables) { u, ok = t.users[id] })
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) Descriptors(ctx context.Context, q database.Querier, cache user.DescriptorCache, ids []int64) error {
	missing := cache.Missing(ids...)
	r.store.readFor(q, func(t *tables) {
		for _, id := range missing {
			if u, ok := t.users[id]; ok {
				cache[id] = u.Descriptor()
			}
		}
	})
	return nil
}
