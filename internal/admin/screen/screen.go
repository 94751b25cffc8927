// Package screen implements the product admin screen: its view-state, the
// transitions that change it and the per-session registry of screens.
package screen

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/abgdnv/shopadmin/internal/admin/datalayer"
	"github.com/abgdnv/shopadmin/internal/admin/dialog"
	"github.com/abgdnv/shopadmin/internal/admin/product"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var (
	// ErrNoSelection is returned by a confirm transition when no product is selected.
	ErrNoSelection = errors.New("no product selected")
	// ErrBusy is returned by a confirm transition while another call is outstanding.
	ErrBusy = errors.New("a data-access call is already in progress")
	// ErrScreenFailed is returned by a confirm transition after a data-access failure.
	ErrScreenFailed = errors.New("screen has failed")
)

const (
	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Screen owns one State. Every transition swaps the state for the value
// reduce returns; readers get copies.
//
// At most one data-access call is outstanding per screen. Once issued, a call
// runs to completion even if the caller's context is cancelled, and Loading
// is cleared whatever its outcome.
type Screen struct {
	gateway datalayer.Gateway
	actions metric.Int64Counter
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a screen showing products. A nil actions counter disables metrics.
func New(gateway datalayer.Gateway, products []product.Product, actions metric.Int64Counter, logger *slog.Logger) *Screen {
	if actions == nil {
		actions, _ = noop.NewMeterProvider().Meter("").Int64Counter("")
	}
	return &Screen{
		gateway: gateway,
		actions: actions,
		logger:  logger.With("component", "screen"),
		state:   State{Products: slices.Clone(products)},
	}
}

// failed returns a screen that ended before it showed anything.
func failed(gateway datalayer.Gateway, err error, actions metric.Int64Counter, logger *slog.Logger) *Screen {
	s := New(gateway, nil, actions, logger)
	s.state.Err = err
	return s
}

// State returns a snapshot of the current view-state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// OpenSaveModal selects p for editing, or a blank draft when p is nil, and shows the save dialog.
func (s *Screen) OpenSaveModal(p *product.Product) {
	target := product.Draft()
	if p != nil {
		target = *p
	}
	s.dispatch(openSave{product: target})
}

// OpenDeleteModal selects p and shows the delete confirmation.
func (s *Screen) OpenDeleteModal(p product.Product) {
	s.dispatch(openDelete{product: p})
}

// CloseSaveModal hides the save dialog. The selection is kept.
func (s *Screen) CloseSaveModal() {
	s.dispatch(closeSave{})
}

// CloseDeleteModal hides the delete confirmation. The selection is kept.
func (s *Screen) CloseDeleteModal() {
	s.dispatch(closeDelete{})
}

// ConfirmDelete deletes the selected product. The id is taken when the call
// is issued, so a later selection cannot change which record is removed.
//
// A data-access failure is stored in the state and nil is returned.
func (s *Screen) ConfirmDelete(ctx context.Context) error {
	target, err := s.begin(deleteStarted{})
	if err != nil {
		s.record(ctx, "delete", outcomeRejected)
		return err
	}
	defer s.dispatch(callSettled{})

	ctx = context.WithoutCancel(ctx)
	if err := s.gateway.Delete(ctx, target.ID); err != nil {
		s.fail(ctx, "delete", err)
		return nil
	}
	s.dispatch(productDeleted{id: target.ID})
	s.record(ctx, "delete", outcomeOK)
	return nil
}

// ConfirmSave stores p: a draft is created and appended, an existing record is
// updated and replaced in place. The selection only guards the call; p is the
// payload.
//
// A data-access failure is stored in the state and nil is returned.
func (s *Screen) ConfirmSave(ctx context.Context, p product.Product) error {
	if _, err := s.begin(saveStarted{}); err != nil {
		s.record(ctx, "save", outcomeRejected)
		return err
	}
	defer s.dispatch(callSettled{})

	ctx = context.WithoutCancel(ctx)
	if p.IsDraft() {
		created, err := s.gateway.Create(ctx, p)
		if err != nil {
			s.fail(ctx, "create", err)
			return nil
		}
		s.dispatch(productCreated{product: created})
		s.record(ctx, "create", outcomeOK)
		return nil
	}

	updated, err := s.gateway.Update(ctx, p)
	if err != nil {
		s.fail(ctx, "update", err)
		return nil
	}
	s.dispatch(productUpdated{product: updated})
	s.record(ctx, "update", outcomeOK)
	return nil
}

// Handle applies a message sent by one of the dialogs.
func (s *Screen) Handle(ctx context.Context, msg dialog.Message) error {
	switch m := msg.(type) {
	case dialog.Save:
		return s.ConfirmSave(ctx, m.Product)
	case dialog.Delete:
		return s.ConfirmDelete(ctx)
	case dialog.Hide:
		if m.From == dialog.DeleteDialog {
			s.CloseDeleteModal()
		} else {
			s.CloseSaveModal()
		}
	}
	return nil
}

// begin checks that a call may be issued and applies start atomically with
// the check. It returns the selection the call targets.
func (s *Screen) begin(start action) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state.Failed():
		return product.Product{}, ErrScreenFailed
	case s.state.Loading:
		return product.Product{}, ErrBusy
	case s.state.Selected == nil:
		return product.Product{}, ErrNoSelection
	}
	target := *s.state.Selected
	s.apply(start)
	return target, nil
}

func (s *Screen) fail(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "Data-access call failed", "operation", op, "error", err)
	s.dispatch(callFailed{err: err})
	s.record(ctx, op, outcomeFailed)
}

func (s *Screen) dispatch(a action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(a)
}

// apply must be called with mu held.
func (s *Screen) apply(a action) {
	s.state = reduce(s.state, a)
	s.logger.Debug("Screen transition", "action", a.name())
}

func (s *Screen) record(ctx context.Context, op, outcome string) {
	s.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", op),
		attribute.String("outcome", outcome),
	))
}
