package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
)

// requireActor returns the authenticated actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// targetUser defaults userID to the actor and checks that acting on another
// user is allowed by permission.
func targetUser(actor user.Actor, userID int64, permission user.Permission) (int64, error) {
	if userID == 0 {
		return actor.ID, nil
	}
	if userID != actor.ID && !actor.Can(permission) {
		return 0, user.ErrInsufficientPermissions
	}
	return userID, nil
}

// queryInt64 parses an optional numeric query parameter. Zero means absent.
func queryInt64(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
