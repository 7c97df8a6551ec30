package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-builds the finance report snapshot cache.
	TaskReportsWarmup = "reports:warmup"
	// TaskInvoiceOverdueSweep flips past-due sent invoices to overdue.
	TaskInvoiceOverdueSweep = "invoices:overdue_sweep"
)

// ReportsWarmupPayload configures a warmup run.
type ReportsWarmupPayload struct {
	// AsOf is an optional YYYY-MM-DD reporting date. Empty means today.
	AsOf string `json:"asOf,omitempty"`
}

// NewReportsWarmupTask constructs an Asynq task for report cache warmup.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// OverdueSweepPayload configures an overdue sweep run.
type OverdueSweepPayload struct {
	// AsOf is an optional YYYY-MM-DD cutoff date. Empty means today.
	AsOf string `json:"asOf,omitempty"`
}

// NewOverdueSweepTask constructs an Asynq task for the overdue sweep.
func NewOverdueSweepTask(payload OverdueSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceOverdueSweep, data), nil
}
