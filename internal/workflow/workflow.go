// Package workflow owns the request status machine. The legal transitions
// live in a table rather than branching code so the whole surface is
// enumerable in tests and adding a state stays a one-line change.
package workflow

import (
	"fmt"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

// transitions maps each status to the statuses an admin may move it to.
// Clients are handled separately: their only legal move is
// pending -> uploaded, normally driven by a payment-proof upload.
var transitions = map[model.RequestStatus][]model.RequestStatus{
	model.StatusPending:  {model.StatusUploaded, model.StatusVoid},
	model.StatusUploaded: {model.StatusVerified, model.StatusVoid},
	model.StatusVerified: {model.StatusPaid, model.StatusVoid},
	model.StatusPaid:     {model.StatusVoid},
	model.StatusVoid:     {},
}

// Statuses lists every known status, useful for exhaustive checks.
func Statuses() []model.RequestStatus {
	return []model.RequestStatus{
		model.StatusPending,
		model.StatusUploaded,
		model.StatusVerified,
		model.StatusPaid,
		model.StatusVoid,
	}
}

func allowed(from, to model.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates that actor may move req to target and mutates the
// status in place. Nothing else on the record changes here; persisting the
// result is the caller's job.
//
// Failure order follows the contract: ownership first (Forbidden), then the
// client-role restriction (Forbidden), then the table lookup
// (InvalidTransition).
func Transition(req *model.Request, target model.RequestStatus, actor model.Actor) error {
	if req.OwnerID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: only the owner or an admin may change this request", apperr.ErrForbidden)
	}

	if !actor.IsAdmin() {
		if req.Status != model.StatusPending || target != model.StatusUploaded {
			return fmt.Errorf("%w: clients may only move a pending request to uploaded", apperr.ErrForbidden)
		}
	}

	if !allowed(req.Status, target) {
		return fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, req.Status, target)
	}

	req.Status = target
	return nil
}
