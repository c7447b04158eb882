package cli

import (
	"context"
)

// Stats prints the request counters gathered since start.
func (a *App) Stats(_ context.Context, _ []string) error {
	if a.metrics == nil {
		printlnFn("No metrics collected.")
		return nil
	}
	lines, err := a.metrics.Summary()
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		printlnFn("No requests yet.")
		return nil
	}
	for _, l := range lines {
		printlnFn(l)
	}
	return nil
}
