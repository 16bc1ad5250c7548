// Package migration moves the local employee data set to the server.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"hrmsync/internal/domain/records"
	"hrmsync/internal/requestctx"
)

const (
	MessageNoData   = "no local data"
	MessageCanceled = "migration canceled"
)

var ErrMissingID = errors.New("server response has no id")

type Options struct {
	// Workers bounds how many employees are in flight at once. One keeps
	// the migration strictly sequential.
	Workers int
	// RateLimit caps employee submissions per second. Zero disables it.
	RateLimit float64
	Now       func() time.Time
}

type Orchestrator struct {
	store   Store
	remote  Remote
	opts    Options
	limiter *rate.Limiter
}

func NewOrchestrator(store Store, remote Remote, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	o := &Orchestrator{store: store, remote: remote, opts: opts}
	if opts.RateLimit > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return o
}

// Migrate submits every stored employee. The local store is cleared only
// when every employee and all of its collections were accepted; otherwise it
// is left untouched so the whole run can be repeated.
//
// Cancellation is observed before each employee starts. An employee already
// in flight is always finished.
func (o *Orchestrator) Migrate(ctx context.Context) Summary {
	summary := Summary{StartedAt: o.opts.Now()}
	employees := o.store.GetAll(ctx)
	if len(employees) == 0 {
		summary.Message = MessageNoData
		summary.Details = []Result{}
		summary.FinishedAt = o.opts.Now()
		return summary
	}
	summary.BatchID = uuid.NewString()
	ctx = requestctx.WithBatchID(ctx, summary.BatchID)
	slog.Info("migration started", "batchId", summary.BatchID, "employees", len(employees), "workers", o.opts.Workers)

	results := make([]*Result, len(employees))
	var g errgroup.Group
	g.SetLimit(o.opts.Workers)
	for i := range employees {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if o.limiter != nil {
				if err := o.limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			res := o.migrateOne(context.WithoutCancel(ctx), employees[i])
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	summary.Details = make([]Result, 0, len(employees))
	for _, res := range results {
		if res == nil {
			continue
		}
		summary.Details = append(summary.Details, *res)
		if res.Status == StatusSuccess {
			summary.MigratedCount++
		} else {
			summary.FailedCount++
		}
	}
	summary.FinishedAt = o.opts.Now()

	switch {
	case len(summary.Details) < len(employees):
		summary.Message = MessageCanceled
	case summary.FailedCount > 0:
		summary.Message = fmt.Sprintf("migrated %d of %d employees, %d failed; local data kept for retry",
			summary.MigratedCount, len(employees), summary.FailedCount)
	default:
		// every record landed; a late cancel must not leave them behind for a
		// duplicate run
		if err := o.store.ClearExceptPreserved(context.WithoutCancel(ctx)); err != nil {
			slog.Error("clear local data after migration failed", "batchId", summary.BatchID, "err", err)
			summary.Message = fmt.Sprintf("migrated %d employees but clearing local data failed: %v", summary.MigratedCount, err)
			break
		}
		summary.Success = true
		summary.Message = fmt.Sprintf("migrated %d employees", summary.MigratedCount)
	}
	slog.Info("migration finished", "batchId", summary.BatchID, "success", summary.Success,
		"migrated", summary.MigratedCount, "failed", summary.FailedCount)
	return summary
}

func (o *Orchestrator) migrateOne(ctx context.Context, emp records.Employee) Result {
	res := Result{
		EmployeeID: emp.ID,
		Name:       strings.TrimSpace(emp.FirstName + " " + emp.LastName),
		Status:     StatusFailed,
	}

	newID, err := o.remote.CreateEmployee(ctx, emp.WithoutMigratedCollections())
	if err == nil && newID == "" {
		err = ErrMissingID
	}
	if err != nil {
		slog.Warn("employee migration failed", "employeeId", emp.ID.String(), "err", err)
		res.Error = err.Error()
		return res
	}
	res.NewID = newID

	var failed []string
	for _, name := range records.MigratedCollections {
		n := emp.CollectionLen(name)
		if n <= 0 {
			continue
		}
		cr := CollectionResult{Name: name, Submitted: n}
		br, err := o.remote.BulkMigrate(ctx, name, newID, emp.Collection(name))
		if err != nil {
			cr.Error = err.Error()
		} else {
			cr.Accepted, cr.Rejected = br.Accepted, br.Rejected
		}
		if cr.Failed() {
			slog.Warn("collection migration failed", "employeeId", emp.ID.String(), "collection", name,
				"rejected", cr.Rejected, "err", cr.Error)
			failed = append(failed, name)
		}
		res.Collections = append(res.Collections, cr)
	}

	if len(failed) > 0 {
		res.Error = "collections failed: " + strings.Join(failed, ", ")
		return res
	}
	res.Status = StatusSuccess
	return res
}
