package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// SimulatorControl is the runtime switch of the automatic check-in simulator
type SimulatorControl interface {
	Enabled(workspaceID string) bool
	SetEnabled(workspaceID string, enabled bool) error
	Configured(workspaceID string) bool
	Interval() time.Duration
}

type SimulatorHandler interface {
	Status(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
}

type simulatorHandlerImpl struct {
	simulator SimulatorControl
}

func NewSimulatorHandler(simulator SimulatorControl) SimulatorHandler {
	return &simulatorHandlerImpl{
		simulator: simulator,
	}
}

// SimulatorStatusResponse describes the simulator for the caller's workspace only
type SimulatorStatusResponse struct {
	Enabled         bool `json:"enabled"`
	Configured      bool `json:"configured"`
	IntervalSeconds int  `json:"interval_seconds"`
}

type ToggleSimulatorRequest struct {
	Enabled *bool `json:"enabled"`
}

func (h *simulatorHandlerImpl) status(workspaceID string) SimulatorStatusResponse {
	return SimulatorStatusResponse{
		Enabled:         h.simulator.Enabled(workspaceID),
		Configured:      h.simulator.Configured(workspaceID),
		IntervalSeconds: int(h.simulator.Interval() / time.Second),
	}
}

func workspaceFromRequest(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	workspaceID, _ := claims["workspace_id"].(string)
	return workspaceID
}

// Status handles GET /simulator
func (h *simulatorHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.status(workspaceFromRequest(r)))
}

// Toggle handles PUT /simulator for the caller's workspace
func (h *simulatorHandlerImpl) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleSimulatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Enabled == nil {
		response.HandleError(w, validator.ValidationErrors{{
			Field:   "enabled",
			Message: "enabled is required",
		}})
		return
	}

	workspaceID := workspaceFromRequest(r)
	if err := h.simulator.SetEnabled(workspaceID, *req.Enabled); err != nil {
		if errors.Is(err, cron.ErrWorkspaceNotSimulated) {
			response.NotFound(w, "Simulator is not configured for this workspace")
			return
		}
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Simulator updated", h.status(workspaceID))
}
