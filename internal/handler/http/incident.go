package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/incident"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type IncidentHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Resubmit(w http.ResponseWriter, r *http.Request)
	Process(w http.ResponseWriter, r *http.Request)
}

type IncidentHandlerImpl struct {
	incidentService incident.IncidentService
}

func NewIncidentHandler(incidentService incident.IncidentService) IncidentHandler {
	return &IncidentHandlerImpl{
		incidentService: incidentService,
	}
}

// Create implements IncidentHandler.
func (h *IncidentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req incident.CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create incident decode error", "error", err)
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

	result, err := h.incidentService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Incident created successfully", result)
}

// List implements IncidentHandler.
func (h *IncidentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := incident.ListIncidentsRequest{
		From:       query.Get("from"),
		To:         query.Get("to"),
		ActorID:    actor.ID,
		Supervisor: actor.IsSupervisor(),
	}

	id, ok := queryInt64(r, "id")
	if !ok {
		response.BadRequest(w, "id must be a number", nil)
		return
	}
	if id != 0 {
		req.ID = &id
	}
	if raw := query.Get("states"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.States = append(req.States, s)
			}
		}
	}

	result, err := h.incidentService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Incidents, &response.Meta{TotalItems: int64(result.Total)})
}

// History implements IncidentHandler.
func (h *IncidentHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := validator.IsPositiveID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Incident ID is invalid", nil)
		return
	}

	result, err := h.incidentService.History(r.Context(), id, incident.Scope{
		ActorID:    actor.ID,
		Supervisor: actor.IsSupervisor(),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Resubmit implements IncidentHandler.
func (h *IncidentHandlerImpl) Resubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, ok := validator.IsPositiveID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "Incident ID is invalid", nil)
		return
	}

	var req incident.ResubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Resubmit incident decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = id
	req.ActorID = actor.ID
	req.OnBehalf = actor.Can(user.PermissionPunchOnBehalf)

	changed, err := h.incidentService.Resubmit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !changed {
		response.Conflict(w, "Incident is no longer in the expected state")
		return
	}

	response.SuccessWithMessage(w, "Incident resubmitted successfully", nil)
}

// Process implements IncidentHandler.
func (h *IncidentHandlerImpl) Process(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req incident.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Process incidents decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ManagerID = actor.ID

	result, err := h.incidentService.Process(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
