package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/punch"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
)

type PunchHandler interface {
	Add(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
}

type PunchHandlerImpl struct {
	punchService punch.PunchService
}

func NewPunchHandler(punchService punch.PunchService) PunchHandler {
	return &PunchHandlerImpl{
		punchService: punchService,
	}
}

// Add implements PunchHandler.
func (h *PunchHandlerImpl) Add(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req punch.AddPunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Add punch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	userID, err := targetUser(actor, req.UserID, user.PermissionPunchOnBehalf)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.UserID = userID
	req.ActorID = actor.ID

	result, err := h.punchService.Record(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch recorded successfully", result)
}

// Finalize implements PunchHandler.
func (h *PunchHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req punch.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Finalize punch decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	userID, err := targetUser(actor, req.UserID, user.PermissionPunchOnBehalf)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.UserID = userID
	req.ActorID = actor.ID

	result, err := h.punchService.Finalize(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch finalized successfully", result)
}

// List implements PunchHandler.
func (h *PunchHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := punch.ListPunchesRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
	}

	userID, ok := queryInt64(r, "user_id")
	if !ok {
		response.BadRequest(w, "user_id must be a number", nil)
		return
	}
	registeredBy, ok := queryInt64(r, "registered_by")
	if !ok {
		response.BadRequest(w, "registered_by must be a number", nil)
		return
	}
	if registeredBy != 0 {
		req.RegisteredBy = &registeredBy
	}
	if raw := query.Get("exclude_incident_linked"); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "exclude_incident_linked must be a boolean", nil)
			return
		}
		req.ExcludeIncidentLinked = exclude
	}

	req.UserID, ok = h.viewable(w, actor, userID)
	if !ok {
		return
	}

	result, err := h.punchService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Punches, &response.Meta{TotalItems: int64(result.Total)})
}

// Recent implements PunchHandler.
func (h *PunchHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	userID, ok := queryInt64(r, "user_id")
	if !ok {
		response.BadRequest(w, "user_id must be a number", nil)
		return
	}
	userID, ok = h.viewable(w, actor, userID)
	if !ok {
		return
	}

	result, err := h.punchService.Recent(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Punches, &response.Meta{TotalItems: int64(result.Total)})
}

func (h *PunchHandlerImpl) viewable(w http.ResponseWriter, actor user.Actor, userID int64) (int64, bool) {
	id, err := targetUser(actor, userID, user.PermissionPunchViewAll)
	if err != nil {
		response.HandleError(w, err)
		return 0, false
	}
	return id, true
}
