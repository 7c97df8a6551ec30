package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/spaceworks-id/spaceworks/internal/invoice"
)

// OverdueSweepJob marks sent invoices past their due date as overdue so the
// aging report reflects them without waiting for a manual status change.
type OverdueSweepJob struct {
	Invoices *invoice.Service
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewOverdueSweepJob wires dependencies for the sweep handler.
func NewOverdueSweepJob(invoiceSvc *invoice.Service, logger *slog.Logger) *OverdueSweepJob {
	return &OverdueSweepJob{
		Invoices: invoiceSvc,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue sweep tasks.
func (j *OverdueSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil {
		return errors.New("overdue sweep: handler not configured")
	}
	var payload OverdueSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	asOf := j.now()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return asynq.SkipRetry
		}
		asOf = parsed
	}

	logger := j.logger().With(slog.String("as_of", asOf.Format("2006-01-02")))

	sweepCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	flipped, err := j.Invoices.RefreshOverdue(sweepCtx, asOf)
	if err != nil {
		logger.Error("overdue sweep", slog.Any("error", err))
		return err
	}

	logger.Info("completed overdue sweep", slog.Int64("flipped", flipped))
	return nil
}

func (j *OverdueSweepJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInvoiceOverdueSweep))
	}
	return slog.Default().With(slog.String("job", TaskInvoiceOverdueSweep))
}

func (j *OverdueSweepJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
