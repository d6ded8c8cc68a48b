package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/mathdrill/internal/model"
	"github.com/verte-zerg/mathdrill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	OpAggsAll        []model.OpAggregate
	OpAggsWindow     []model.OpAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	opAggsAll, err := st.ListOpAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate operations: %w", err)
	}
	opAggsWindow, err := st.ListOpAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate operations: %w", err)
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		OpAggsAll:        opAggsAll,
		OpAggsWindow:     opAggsWindow,
	}, nil
}

// Render writes the full text report. A width of 0 uses the terminal width.
func Render(w io.Writer, r Report, window, width int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Sessions, window, width); err != nil {
		return err
	}
	if err := RenderOpTable(w, r.OpAggsAll); err != nil {
		return err
	}
	weak := WeakestOperations(r.OpAggsWindow, 2)
	if len(weak) == 0 {
		return nil
	}
	labels := make([]string, len(weak))
	for i, op := range weak {
		labels[i] = OperationLabel(op)
	}
	_, err := fmt.Fprintf(w, "Practice next: %s\n", strings.Join(labels, ", "))
	return err
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
