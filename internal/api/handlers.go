package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/aggregate"
	"github.com/opsdeck/opsdeck/internal/calllog"
	"github.com/opsdeck/opsdeck/internal/chain"
	"github.com/opsdeck/opsdeck/internal/event"
	"github.com/opsdeck/opsdeck/internal/graphview"
	"github.com/opsdeck/opsdeck/internal/scenario"
	"github.com/opsdeck/opsdeck/internal/stream"
)

// Handler holds API route handlers and the components they read.
type Handler struct {
	buffer    *stream.Buffer
	graph     *graphview.Holder
	log       *calllog.DB
	scenarios *scenario.Registry
	runner    *scenario.Runner
	ingest    func(event.Event)

	// appCtx bounds scenario playback: a run outlives the request that
	// started it but not the application.
	appCtx context.Context
}

// NewHandler creates a new Handler.
func NewHandler(appCtx context.Context, buffer *stream.Buffer, graph *graphview.Holder,
	log *calllog.DB, scenarios *scenario.Registry, runner *scenario.Runner,
	ingest func(event.Event)) *Handler {
	return &Handler{
		buffer:    buffer,
		graph:     graph,
		log:       log,
		scenarios: scenarios,
		runner:    runner,
		ingest:    ingest,
		appCtx:    appCtx,
	}
}

// Chain handles GET /api/chain: the reasoning-chain timeline derived from
// the current history. Recomputed from scratch per request.
func (h *Handler) Chain(w http.ResponseWriter, _ *http.Request) {
	steps := chain.Derive(h.buffer.Snapshot())
	if steps == nil {
		steps = []chain.Step{}
	}
	writeJSON(w, http.StatusOK, ChainResponse{Steps: steps, Total: len(steps)})
}

// Graph handles GET /api/graph: the positioned layout of the most recently
// applied snapshot.
func (h *Handler) Graph(w http.ResponseWriter, _ *http.Request) {
	layout := h.graph.Layout()
	if layout.Nodes == nil {
		layout.Nodes = []graphview.PositionedNode{}
	}
	if layout.Edges == nil {
		layout.Edges = []graphview.PositionedEdge{}
	}
	writeJSON(w, http.StatusOK, layout)
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	events := h.buffer.Snapshot()
	steps := chain.Derive(events)
	writeJSON(w, http.StatusOK, aggregate.Summarize(events, steps, h.buffer.Connected()))
}

// History handles GET /api/history: the raw buffered events, for
// diagnostics and client catch-up after reconnect.
func (h *Handler) History(w http.ResponseWriter, _ *http.Request) {
	events := h.buffer.Snapshot()
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Events: events, Total: len(events)})
}

// CallHistory handles GET /api/calls/history.
func (h *Handler) CallHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.log.RecentCalls(limit)
	if err != nil {
		slog.Error("call history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rows == nil {
		rows = []calllog.CallRow{}
	}
	writeJSON(w, http.StatusOK, CallHistoryResponse{Calls: rows, Total: len(rows)})
}

// BillHistory handles GET /api/bills/history.
func (h *Handler) BillHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.log.RecentBills(limit)
	if err != nil {
		slog.Error("bill history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rows == nil {
		rows = []calllog.BillRow{}
	}
	writeJSON(w, http.StatusOK, BillHistoryResponse{Bills: rows, Total: len(rows)})
}

// ListScenarios handles GET /api/scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	var items []ScenarioInfo
	for _, s := range h.scenarios.List() {
		items = append(items, ScenarioInfo{
			Name:        s.Name,
			Description: s.Description,
			Steps:       len(s.Steps),
		})
	}
	if items == nil {
		items = []ScenarioInfo{}
	}
	writeJSON(w, http.StatusOK, ScenarioListResponse{Scenarios: items})
}

// RunScenario handles POST /api/scenarios/{name}/run. Playback is
// asynchronous; the response only confirms the start.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.runner.Start(h.appCtx, name); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("scenario not found"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "started",
		"scenario": name,
	})
}

// Reset handles POST /api/demo/reset: injects the reset control event
// through the normal ingest path so history clearing follows the same
// contract as an upstream-initiated reset.
func (h *Handler) Reset(w http.ResponseWriter, _ *http.Request) {
	h.ingest(event.New(event.KindTaskPhaseUpdate, json.RawMessage(`{"reset": true}`)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset_complete"})
}
