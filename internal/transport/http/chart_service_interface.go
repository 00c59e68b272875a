package http

import (
	"context"

	"naepdash/internal/dataset"
	"naepdash/internal/services"
	"naepdash/internal/session"
)

// ChartServiceInterface defines what the chart handler needs from the
// service layer, so tests can substitute implementations.
type ChartServiceInterface interface {
	Meta(ctx context.Context) services.Meta
	Chart(ctx context.Context, subject dataset.Subject, grade dataset.Grade) (*services.Chart, error)
	UpdateSelection(ctx context.Context, mode string, states []string) (session.Snapshot, error)
	Selection(ctx context.Context) session.Snapshot
}
