package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
)

type ScheduleHandler interface {
	CreateSet(w http.ResponseWriter, r *http.Request)
	ListSets(w http.ResponseWriter, r *http.Request)
	PreviewWindow(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// CreateSet implements ScheduleHandler.
func (h *scheduleHandlerImpl) CreateSet(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateSet decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.scheduleService.CreateSet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Schedule created successfully", result)
}

// ListSets implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListSets(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	userID, ok := queryInt64(r, "user_id")
	if !ok {
		response.BadRequest(w, "user_id must be a number", nil)
		return
	}
	userID, err := targetUser(actor, userID, user.PermissionPunchViewAll)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.scheduleService.ListSets(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

// PreviewWindow implements ScheduleHandler.
func (h *scheduleHandlerImpl) PreviewWindow(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	userID, ok := queryInt64(r, "user_id")
	if !ok {
		response.BadRequest(w, "user_id must be a number", nil)
		return
	}
	userID, err := targetUser(actor, userID, user.PermissionPunchViewAll)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := schedule.PreviewWindowRequest{
		UserID: userID,
		At:     r.URL.Query().Get("at"),
	}
	result, err := h.scheduleService.PreviewWindow(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
