package sheets

import (
	"context"

	"balancebooks/internal/core"
	"balancebooks/internal/finance"
)

// Ports for outbound spreadsheet adapters.
type (
	// CycleExporter writes the twelve-month cycle ending at a period.
	CycleExporter interface {
		ExportCycle(ctx context.Context, closed core.Period, points []finance.CyclePoint) (rangeRef string, err error)
	}

	// TransactionExporter writes the transactions of one year.
	TransactionExporter interface {
		ExportTransactions(ctx context.Context, year int, txs []core.Transaction) (rangeRef string, err error)
	}

	Exporter interface {
		CycleExporter
		TransactionExporter
	}
)
