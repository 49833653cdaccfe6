// Package engine executes one primary mutation on a Task or User plus
// whatever reverse-side corrections keep the denormalized
// Task.assignedUser <-> User.pendingTasks link consistent. The store
// offers single-document atomicity only, so the ordering is always:
// validate, write the primary document, then run the independent
// reverse-side corrections concurrently. A failed correction is logged
// and reported to the audit sink but never fails the operation or
// rolls back a sibling.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"task-tracker/backend/internal/store"
)

const (
	CollectionTasks = "tasks"
	CollectionUsers = "users"
)

// Correction actions, named for what happened to the secondary
// document.
const (
	ActionPendingAdd    = "pendingTasks.add"
	ActionPendingRemove = "pendingTasks.remove"
	ActionRelink        = "task.relink"
	ActionUnassign      = "task.unassign"
)

// LinkCorrection describes one secondary document the engine rewrote as
// a side effect of a primary mutation.
type LinkCorrection struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Action     string `json:"action"`
}

// LinkEvent is the audit record for one attempted correction, including
// the ones whose failure was swallowed.
type LinkEvent struct {
	Operation  string          `json:"operation"`
	PrimaryID  string          `json:"primary_id"`
	Correction *LinkCorrection `json:"correction,omitempty"`
	Failed     bool            `json:"failed"`
	Cause      string          `json:"cause,omitempty"`
	At         time.Time       `json:"at"`
}

// AuditSink receives link events out-of-band. Sink failures are
// swallowed like the correction failures they describe.
type AuditSink interface {
	Record(ctx context.Context, event LinkEvent) error
}

type Engine struct {
	tasks store.TaskStore
	users store.UserStore
	audit AuditSink
}

type Option func(*Engine)

func WithAuditSink(sink AuditSink) Option {
	return func(e *Engine) {
		e.audit = sink
	}
}

func New(tasks store.TaskStore, users store.UserStore, opts ...Option) *Engine {
	e := &Engine{tasks: tasks, users: users}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// correctionFn performs one reverse-side correction. A nil result with
// a nil error means the precondition did not hold and nothing was
// written.
type correctionFn func(ctx context.Context) (*LinkCorrection, error)

// runCorrections dispatches the corrections concurrently and waits for
// all of them. Failures are logged, audited and dropped.
func (e *Engine) runCorrections(ctx context.Context, operation, primaryID string, fns ...correctionFn) []LinkCorrection {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied []LinkCorrection
	)

	for _, fn := range fns {
		wg.Add(1)
		go func(fn correctionFn) {
			defer wg.Done()

			correction, err := fn(ctx)
			if err != nil {
				log.Printf("%s: reverse-side correction for %s failed (primary write kept): %v", operation, primaryID, err)
				e.emit(ctx, LinkEvent{
					Operation: operation,
					PrimaryID: primaryID,
					Failed:    true,
					Cause:     err.Error(),
					At:        time.Now().UTC(),
				})
				return
			}
			if correction == nil {
				return
			}

			mu.Lock()
			applied = append(applied, *correction)
			mu.Unlock()

			e.emit(ctx, LinkEvent{
				Operation:  operation,
				PrimaryID:  primaryID,
				Correction: correction,
				At:         time.Now().UTC(),
			})
		}(fn)
	}

	wg.Wait()
	return applied
}

func (e *Engine) emit(ctx context.Context, event LinkEvent) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Record(ctx, event); err != nil {
		log.Printf("link audit sink rejected event for %s: %v", event.PrimaryID, err)
	}
}
