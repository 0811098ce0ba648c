package restserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/chrissnell/hydrosphere/pkg/plot"
	"github.com/chrissnell/hydrosphere/pkg/responseformat"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const defaultListLimit = 50

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// RunRequest is the body of POST /runs. Omitted simulation fields take
// their default values.
type RunRequest struct {
	config.SimulationData
	StepLimit int `json:"step_limit,omitempty"`
}

// DefaultsResponse is the body of GET /defaults.
type DefaultsResponse struct {
	Simulation config.SimulationData `json:"simulation"`
	MaxSteps   int                   `json:"max_steps,omitempty"`
}

// CreateRun runs a simulation synchronously and returns the stored record.
func (h *Handlers) CreateRun(w http.ResponseWriter, req *http.Request) {
	body := RunRequest{SimulationData: config.DefaultSimulationData()}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Errorf("invalid run request: %w", err))
		return
	}

	if body.StepLimit < 0 {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Errorf("step_limit must not be negative, got %d", body.StepLimit))
		return
	}

	opts := hydrosphere.Options{StepLimit: h.capSteps(body.StepLimit)}

	rec, res, err := h.controller.runner.Execute(req.Context(), body.Parameters(), opts)
	switch {
	case errors.Is(err, hydrosphere.ErrInvalidConfiguration):
		h.formatter.WriteError(w, req, http.StatusBadRequest, err)
		return
	case res != nil && res.Status == hydrosphere.StatusStopped:
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		h.controller.logger.Errorf("run failed: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return
	}

	headers := map[string]string{"Location": "/runs/" + rec.ID.String()}
	h.formatter.WriteStatus(w, req, http.StatusCreated, rec, headers)
}

// capSteps applies the configured step cap to a requested limit.
func (h *Handlers) capSteps(limit int) int {
	maxSteps := h.controller.restConfig.MaxSteps
	if maxSteps > 0 && (limit == 0 || limit > maxSteps) {
		return maxSteps
	}
	return limit
}

// ListRuns returns the most recent runs without their profiles.
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	limit := defaultListLimit
	if v := req.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := h.controller.runner.Store().ListRuns(req.Context(), limit)
	if err != nil {
		h.controller.logger.Errorf("could not list runs: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return
	}

	briefs := make([]storage.RunRecord, len(runs))
	for i, r := range runs {
		briefs[i] = r.Brief()
	}

	h.formatter.WriteResponse(w, req, briefs, nil)
}

// GetRun returns one stored run with its profile.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	rec, ok := h.lookupRun(w, req)
	if !ok {
		return
	}
	h.formatter.WriteResponse(w, req, rec, nil)
}

// GetRunPlot renders the final profile of a stored run as PNG.
func (h *Handlers) GetRunPlot(w http.ResponseWriter, req *http.Request) {
	rec, ok := h.lookupRun(w, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := plot.WriteTo(&buf, rec.Result()); err != nil {
		h.controller.logger.Errorf("could not render plot for run %s: %v", rec.ID, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// GetDefaults returns the default simulation inputs and the step cap.
func (h *Handlers) GetDefaults(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, DefaultsResponse{
		Simulation: config.DefaultSimulationData(),
		MaxSteps:   h.controller.restConfig.MaxSteps,
	}, nil)
}

func (h *Handlers) lookupRun(w http.ResponseWriter, req *http.Request) (*storage.RunRecord, bool) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
		return nil, false
	}

	rec, err := h.controller.runner.Store().GetRun(req.Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		h.controller.logger.Errorf("could not load run %s: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return nil, false
	}

	return rec, true
}
