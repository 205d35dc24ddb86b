// Package apperr defines the error taxonomy shared by services, repositories
// and the HTTP error-mapping middleware. Callers wrap these sentinels with
// fmt.Errorf("...: %w", ...) and match with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound covers missing records: requests, shipping lines,
	// tariffs, actors, attachments.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidAmount is returned when a required monetary input is
	// missing, non-numeric or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidTransition is returned for a status change not present in
	// the workflow table for the caller's role.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrForbidden is returned on ownership or role violations.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict covers uniqueness violations: duplicate container per
	// day, duplicate tariff per shipping line.
	ErrConflict = errors.New("conflict")

	// ErrUnsupportedFile is returned when an upload fails the MIME
	// allow-list or the size ceiling.
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrConfigMissing means the rate configuration row is absent. This is
	// a broken bootstrap, not a caller error.
	ErrConfigMissing = errors.New("rate configuration missing")
)
