package sheets

import (
	"context"

	"taxiledger/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// SummaryWriter publishes a monthly summary to a shared spreadsheet.
	SummaryWriter interface {
		WriteMonthSummary(ctx context.Context, ms core.MonthlySummary) error
	}
)
