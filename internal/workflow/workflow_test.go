package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

var (
	ownerID = uuid.New()
	adminID = uuid.New()
	otherID = uuid.New()
)

func owner() model.Actor { return model.Actor{ID: ownerID, Role: model.RoleClient} }
func admin() model.Actor { return model.Actor{ID: adminID, Role: model.RoleAdmin} }
func other() model.Actor { return model.Actor{ID: otherID, Role: model.RoleClient} }

func reqIn(status model.RequestStatus) *model.Request {
	return &model.Request{ID: uuid.New(), OwnerID: ownerID, Status: status}
}

func TestTransition_AdminTable(t *testing.T) {
	legal := map[model.RequestStatus][]model.RequestStatus{
		model.StatusPending:  {model.StatusUploaded, model.StatusVoid},
		model.StatusUploaded: {model.StatusVerified, model.StatusVoid},
		model.StatusVerified: {model.StatusPaid, model.StatusVoid},
		model.StatusPaid:     {model.StatusVoid},
		model.StatusVoid:     {},
	}

	// Every (from, to) pair either succeeds and lands exactly on the
	// target, or fails with InvalidTransition.
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			r := reqIn(from)
			err := Transition(r, to, admin())

			isLegal := false
			for _, next := range legal[from] {
				if next == to {
					isLegal = true
				}
			}

			if isLegal {
				require.NoError(t, err, "%s -> %s should be legal for admin", from, to)
				assert.Equal(t, to, r.Status)
			} else {
				assert.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s -> %s", from, to)
				assert.Equal(t, from, r.Status, "status must not change on failure")
			}
		}
	}
}

func TestTransition_ClientRole(t *testing.T) {
	t.Run("happy: owner moves pending to uploaded", func(t *testing.T) {
		r := reqIn(model.StatusPending)
		require.NoError(t, Transition(r, model.StatusUploaded, owner()))
		assert.Equal(t, model.StatusUploaded, r.Status)
	})

	t.Run("bad: owner cannot verify", func(t *testing.T) {
		r := reqIn(model.StatusUploaded)
		err := Transition(r, model.StatusVerified, owner())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
		assert.Equal(t, model.StatusUploaded, r.Status)
	})

	t.Run("bad: owner cannot void", func(t *testing.T) {
		r := reqIn(model.StatusPending)
		err := Transition(r, model.StatusVoid, owner())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("bad: every client move except pending->uploaded is forbidden", func(t *testing.T) {
		for _, from := range Statuses() {
			for _, to := range Statuses() {
				if from == model.StatusPending && to == model.StatusUploaded {
					continue
				}
				err := Transition(reqIn(from), to, owner())
				assert.ErrorIs(t, err, apperr.ErrForbidden, "%s -> %s", from, to)
			}
		}
	})
}

func TestTransition_Ownership(t *testing.T) {
	t.Run("bad: unrelated client is rejected", func(t *testing.T) {
		err := Transition(reqIn(model.StatusPending), model.StatusUploaded, other())
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("happy: admin need not own the request", func(t *testing.T) {
		r := reqIn(model.StatusUploaded)
		require.NoError(t, Transition(r, model.StatusVerified, admin()))
	})

	t.Run("bad: admin cannot resurrect a void request", func(t *testing.T) {
		err := Transition(reqIn(model.StatusVoid), model.StatusPending, admin())
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	})
}
