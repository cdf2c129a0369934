package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/invoicepost/internal/model"
)

// Transport delivers one task's message with its attachment. Implementations
// report any connection, authentication or protocol failure as an error;
// the dispatcher decides whether to retry.
type Transport interface {
	Send(ctx context.Context, task model.SendTask) error
}

// Dispatcher runs send tasks strictly sequentially. SMTP providers throttle
// bursty senders, so the delay between sends is a correctness requirement
// and sequential blocking keeps it exact. The same delay spaces retries of
// a failing task.
type Dispatcher struct {
	transport  Transport
	delay      time.Duration
	maxRetries int
	logger     *slog.Logger

	// sleep is replaced in tests to observe waits without real time passing.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(t Transport, delay time.Duration, maxRetries int, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		transport:  t,
		delay:      delay,
		maxRetries: maxRetries,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks in order and returns one outcome per processed task,
// in the same order. A failed task never aborts the loop; only context
// cancellation cuts the run short, returning the outcomes accumulated so
// far. In dry-run mode every task is recorded as skipped with no transport
// call and no delay.
func (d *Dispatcher) Run(ctx context.Context, tasks []model.SendTask, dryRun bool) []model.SendOutcome {
	outcomes := make([]model.SendOutcome, 0, len(tasks))

	for i, task := range tasks {
		if dryRun {
			d.logger.Info("dry run: would send",
				"account", task.Account,
				"company", task.Company,
				"recipients", strings.Join(task.Recipients, ", "),
				"file", task.PDFPath,
			)
			outcomes = append(outcomes, model.SendOutcome{Task: task, Status: model.StatusSkipped})
			continue
		}

		outcome, interrupted := d.attempt(ctx, task)
		outcomes = append(outcomes, outcome)
		if interrupted {
			return outcomes
		}

		// Inter-send delay spaces consecutive transport calls, so the
		// last task does not wait.
		if i < len(tasks)-1 {
			if err := d.sleep(ctx, d.delay); err != nil {
				return outcomes
			}
		}
	}
	return outcomes
}

// attempt drives one task through its retries. interrupted reports that the
// context was cancelled while waiting, in which case the returned outcome
// covers the attempts made before the interruption.
func (d *Dispatcher) attempt(ctx context.Context, task model.SendTask) (outcome model.SendOutcome, interrupted bool) {
	var lastErr error
	attempts := 0

	for {
		attempts++
		err := d.transport.Send(ctx, task)
		if err == nil {
			d.logger.Info("sent",
				"account", task.Account,
				"company", task.Company,
				"recipients", strings.Join(task.Recipients, ", "),
				"attempts", attempts,
			)
			return model.SendOutcome{Task: task, Status: model.StatusSent, Attempts: attempts}, false
		}

		lastErr = err
		if attempts > d.maxRetries {
			break
		}
		d.logger.Warn("send failed, retrying",
			"account", task.Account,
			"attempt", attempts,
			"max_retries", d.maxRetries,
			"err", err,
		)
		if err := d.sleep(ctx, d.delay); err != nil {
			interrupted = true
			break
		}
	}

	d.logger.Error("send failed",
		"account", task.Account,
		"company", task.Company,
		"attempts", attempts,
		"err", lastErr,
	)
	return model.SendOutcome{
		Task:     task,
		Status:   model.StatusFailed,
		Attempts: attempts,
		Error:    lastErr.Error(),
	}, interrupted
}
