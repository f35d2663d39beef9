/*
sweep.go - Automated overdue-invoice sweep

PURPOSE:
  Periodically lists emitted, unpaid invoices past their due date and
  records the result as an audit run. The sweep is strictly read-only on
  invoices: overdue is a derived condition, never a stored status, so the
  sweep writes nothing but its own run record.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each pass records an invoicing.SweepRun for audit and UI display
  - RunSweep is also callable inline (admin endpoint, tests)

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the sweep is active (default: true)

USAGE:
  sweeper := NewOverdueSweeper(store, store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: TriggerSweep endpoint (manual run)
  - invoicing/types.go: Overdue predicate and SweepRun record
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/dealflow-engine/invoicing"
)

// OverdueSweeper periodically audits overdue invoices.
type OverdueSweeper struct {
	Invoices      invoicing.Store
	Runs          invoicing.RunStore
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewOverdueSweeper creates a new sweeper.
func NewOverdueSweeper(invoices invoicing.Store, runs invoicing.RunStore) *OverdueSweeper {
	return &OverdueSweeper{
		Invoices:      invoices,
		Runs:          runs,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the background sweep.
func (s *OverdueSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Sweep] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Sweep] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the sweep.
func (s *OverdueSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Sweep] Stopped")
	}
}

func (s *OverdueSweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *OverdueSweeper) sweep() {
	run, err := RunSweep(context.Background(), s.Invoices, s.Runs, time.Now().UTC())
	if err != nil {
		log.Printf("[Sweep] Error: %v", err)
		return
	}
	if run.OverdueCount > 0 {
		log.Printf("[Sweep] %d overdue invoice(s) found", run.OverdueCount)
	}
}

// RunSweep performs one sweep pass and records the run.
func RunSweep(ctx context.Context, invoices invoicing.Store, runs invoicing.RunStore, now time.Time) (*invoicing.SweepRun, error) {
	emitted, err := invoices.ListByStatus(ctx, invoicing.StatusInvoiced)
	if err != nil {
		return nil, err
	}

	overdue := invoicing.ListOverdue(emitted, now)
	ids := make([]string, len(overdue))
	for i, inv := range overdue {
		ids[i] = inv.ID
	}

	run := invoicing.SweepRun{
		ID:           uuid.NewString(),
		At:           now,
		OverdueCount: len(overdue),
		InvoiceIDs:   ids,
	}
	if err := runs.RecordSweepRun(ctx, run); err != nil {
		return nil, err
	}
	return &run, nil
}
