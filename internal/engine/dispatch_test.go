package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/invoicepost/internal/model"
)

// fakeTransport fails the first failures calls, then succeeds.
type fakeTransport struct {
	failures int
	calls    int
}

func (f *fakeTransport) Send(ctx context.Context, task model.SendTask) error {
	f.calls++
	if f.calls <= f.failures {
		return fmt.Errorf("smtp: connection reset (call %d)", f.calls)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTasks(n int) []model.SendTask {
	tasks := make([]model.SendTask, n)
	for i := range tasks {
		tasks[i] = model.SendTask{
			Account:    fmt.Sprintf("%05d", i+1),
			Company:    "Acme",
			Recipients: []string{"a@x.com"},
			PDFPath:    "invoices/x.pdf",
		}
	}
	return tasks
}

// newTestDispatcher records sleeps instead of waiting.
func newTestDispatcher(t Transport, maxRetries int) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(t, 2*time.Second, maxRetries, testLogger())
	var slept []time.Duration
	d.sleep = func(ctx context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return ctx.Err()
	}
	return d, &slept
}

func TestDryRunSkipsEverything(t *testing.T) {
	tr := &fakeTransport{}
	d, slept := newTestDispatcher(tr, 3)

	outcomes := d.Run(context.Background(), testTasks(4), true)

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Status != model.StatusSkipped || o.Attempts != 0 {
			t.Errorf("outcome %d: got %s/%d, want skipped/0", i, o.Status, o.Attempts)
		}
	}
	if tr.calls != 0 {
		t.Errorf("dry run made %d transport calls", tr.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("dry run slept: %v", *slept)
	}
}

func TestDryRunIsDeterministic(t *testing.T) {
	tasks := testTasks(3)
	d1, _ := newTestDispatcher(&fakeTransport{}, 0)
	d2, _ := newTestDispatcher(&fakeTransport{}, 0)

	a := d1.Run(context.Background(), tasks, true)
	b := d2.Run(context.Background(), tasks, true)

	if len(a) != len(b) {
		t.Fatalf("outcome counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Status != b[i].Status || a[i].Task.Account != b[i].Task.Account {
			t.Errorf("outcome %d differs between identical runs", i)
		}
	}
}

func TestRetryThenSuccess(t *testing.T) {
	tr := &fakeTransport{failures: 2}
	d, _ := newTestDispatcher(tr, 2)

	outcomes := d.Run(context.Background(), testTasks(1), false)

	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.Status != model.StatusSent {
		t.Errorf("got status %s, want sent", o.Status)
	}
	if o.Attempts != 3 {
		t.Errorf("got attempts %d, want 3", o.Attempts)
	}
}

func TestRetriesExhausted(t *testing.T) {
	tr := &fakeTransport{failures: 100}
	d, _ := newTestDispatcher(tr, 1)

	outcomes := d.Run(context.Background(), testTasks(2), false)

	if len(outcomes) != 2 {
		t.Fatalf("a failed task must not abort the loop; got %d outcomes", len(outcomes))
	}
	o := outcomes[0]
	if o.Status != model.StatusFailed {
		t.Errorf("got status %s, want failed", o.Status)
	}
	if o.Attempts != 2 {
		t.Errorf("got attempts %d, want 2 (initial + 1 retry)", o.Attempts)
	}
	if o.Error == "" {
		t.Error("failed outcome should carry the last error message")
	}
}

func TestZeroRetriesMeansSingleAttempt(t *testing.T) {
	tr := &fakeTransport{failures: 100}
	d, _ := newTestDispatcher(tr, 0)

	outcomes := d.Run(context.Background(), testTasks(1), false)
	if outcomes[0].Attempts != 1 {
		t.Errorf("got attempts %d, want 1", outcomes[0].Attempts)
	}
}

func TestInterSendDelaySkipsLastTask(t *testing.T) {
	tr := &fakeTransport{}
	d, slept := newTestDispatcher(tr, 0)

	d.Run(context.Background(), testTasks(3), false)

	// Two gaps between three tasks, none after the last.
	if len(*slept) != 2 {
		t.Fatalf("expected 2 delays, got %v", *slept)
	}
	for _, dur := range *slept {
		if dur != 2*time.Second {
			t.Errorf("unexpected delay %v", dur)
		}
	}
}

func TestOutcomesFollowTaskOrder(t *testing.T) {
	tr := &fakeTransport{failures: 1} // first call fails, so task 1 retries
	d, _ := newTestDispatcher(tr, 1)

	tasks := testTasks(3)
	outcomes := d.Run(context.Background(), tasks, false)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i := range tasks {
		if outcomes[i].Task.Account != tasks[i].Account {
			t.Errorf("outcome %d is for account %q, want %q", i, outcomes[i].Task.Account, tasks[i].Account)
		}
	}
}

func TestCancellationReturnsPartialOutcomes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tr := &cancellingTransport{cancel: cancel, after: 2}
	d := NewDispatcher(tr, time.Second, 0, testLogger())
	d.sleep = func(ctx context.Context, dur time.Duration) error { return ctx.Err() }

	outcomes := d.Run(ctx, testTasks(5), false)

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 partial outcomes, got %d", len(outcomes))
	}
}

// cancellingTransport cancels the run's context after a number of sends.
type cancellingTransport struct {
	cancel context.CancelFunc
	after  int
	calls  int
}

func (c *cancellingTransport) Send(ctx context.Context, task model.SendTask) error {
	c.calls++
	if c.calls == c.after {
		c.cancel()
	}
	return nil
}

func TestRunnerExecuteRejectsBadSettings(t *testing.T) {
	r := &Runner{
		Settings: &model.AppSettings{}, // no paths at all
		Logger:   testLogger(),
	}
	if _, err := r.Execute(context.Background(), true); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestRunnerExecuteDryRun(t *testing.T) {
	r := &Runner{
		Source: rowsFunc(func() ([]model.Row, error) {
			return []model.Row{
				{Company: "Acme", RawAccounts: "12345", RawEmails: "a@x.com"},
				{Company: "Globex", RawAccounts: "99999", RawEmails: "b@x.com"},
			}, nil
		}),
		Lister: listFunc(func() ([]string, error) {
			return []string{"12345_jan.pdf"}, nil
		}),
		Settings: &model.AppSettings{
			SpreadsheetPath:  "accounts.xlsx",
			InvoicesDir:      "invoices",
			EmailsColumn:     model.DefaultEmailsColumn,
			AccountColumn:    model.DefaultAccountColumn,
			Subject:          model.DefaultSubject,
			Body:             model.DefaultBody,
			SendDelaySeconds: 2.1,
			MaxRetries:       3,
		},
		Logger: testLogger(),
	}

	report, err := r.Execute(context.Background(), true)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	sum := report.Summary()
	if sum.Processed != 1 || sum.Skipped != 1 {
		t.Errorf("summary %+v, want 1 processed / 1 skipped", sum)
	}
	if sum.Diagnostics != 1 {
		t.Errorf("expected 1 diagnostic for the unmatched account, got %d", sum.Diagnostics)
	}
}

func TestRunnerExecuteListerFailureIsFatal(t *testing.T) {
	r := &Runner{
		Source: rowsFunc(func() ([]model.Row, error) { return nil, nil }),
		Lister: listFunc(func() ([]string, error) { return nil, errors.New("no such directory") }),
		Settings: &model.AppSettings{
			SpreadsheetPath: "accounts.xlsx",
			InvoicesDir:     "invoices",
		},
		Logger: testLogger(),
	}
	if _, err := r.Execute(context.Background(), true); err == nil {
		t.Fatal("expected fatal error from lister")
	}
}

type rowsFunc func() ([]model.Row, error)

func (f rowsFunc) Rows() ([]model.Row, error) { return f() }

type listFunc func() ([]string, error)

func (f listFunc) List() ([]string, error) { return f() }
