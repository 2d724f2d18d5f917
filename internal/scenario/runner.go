package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeck/opsdeck/internal/apperr"
	"github.com/opsdeck/opsdeck/internal/event"
)

// Ingest receives the events a running scenario produces; it is the same
// function the live transport feeds.
type Ingest func(e event.Event)

// Runner plays scenarios into the ingest path with their scripted timing.
type Runner struct {
	registry *Registry
	ingest   Ingest
	logger   *slog.Logger
}

// NewRunner creates a runner over the registry.
func NewRunner(registry *Registry, ingest Ingest, logger *slog.Logger) *Runner {
	return &Runner{registry: registry, ingest: ingest, logger: logger}
}

// Start begins playing the named scenario in the background. It returns an
// error only if the scenario does not exist; playback itself is fire and
// forget, cancelled by ctx.
func (r *Runner) Start(ctx context.Context, name string) error {
	s, ok := r.registry.Get(name)
	if !ok {
		return fmt.Errorf("scenario %s: %w", name, apperr.ErrNotFound)
	}
	go r.play(ctx, s)
	return nil
}

func (r *Runner) play(ctx context.Context, s *Scenario) {
	vars := map[string]string{
		"call_id":      "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		"confirmation": fmt.Sprintf("CNF-%d-%s", time.Now().Year(), strings.ToUpper(uuid.NewString()[:4])),
	}
	r.logger.Info("scenario: started",
		slog.String("name", s.Name),
		slog.String("call_id", vars["call_id"]))

	for i, st := range s.Steps {
		if st.DelayMS > 0 {
			select {
			case <-ctx.Done():
				r.logger.Info("scenario: cancelled", slog.String("name", s.Name))
				return
			case <-time.After(time.Duration(st.DelayMS) * time.Millisecond):
			}
		}

		payload, err := json.Marshal(expand(st.Payload, vars))
		if err != nil {
			r.logger.Warn("scenario: bad step payload",
				slog.String("name", s.Name), slog.Int("step", i))
			continue
		}
		r.ingest(event.New(event.Kind(st.Kind), payload))
	}
	r.logger.Info("scenario: finished", slog.String("name", s.Name))
}

// expand substitutes {{var}} tokens in every string value of the payload,
// recursing through nested maps and lists.
func expand(v any, vars map[string]string) any {
	switch val := v.(type) {
	case string:
		for k, repl := range vars {
			val = strings.ReplaceAll(val, "{{"+k+"}}", repl)
		}
		return val
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = expand(item, vars)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = expand(item, vars)
		}
		return out
	default:
		return v
	}
}
