package user

type Role string

const (
	RoleEmployee   Role = "employee"   // Punches for themselves
	RoleRegistrar  Role = "registrar"  // Punches on behalf of others
	RoleSupervisor Role = "supervisor" // Processes incidents
	RoleAdmin      Role = "admin"      // Declares schedules
)

type User struct {
	ID   int64
	Name string
	Role Role
}

// Descriptor is the minimal display shape attached to listings.
type Descriptor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (u User) Descriptor() Descriptor {
	return Descriptor{ID: u.ID, Name: u.Name}
}

// IsSupervisor checks if user can process incidents
func (u *User) IsSupervisor() bool {
	return u.Role == RoleSupervisor || u.Role == RoleAdmin
}

// DescriptorCache is a query-scoped map from user id to descriptor, filled
// while loading lists so each user is looked up once.
type DescriptorCache map[int64]Descriptor

// Missing returns the ids from ids not yet present in the cache, without
// duplicates.
func (c DescriptorCache) Missing(ids ...int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := c[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r Role) Valid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// Actor is the authenticated user behind a request.
type Actor struct {
	ID   int64
	Role Role
}

// IsSupervisor checks if the actor sees and processes others' incidents
func (a Actor) IsSupervisor() bool {
	return a.Role == RoleSupervisor || a.Role == RoleAdmin
}

func (a Actor) Can(p Permission) bool {
	return HasPermission(a.Role, p)
}
