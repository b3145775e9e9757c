// Package apiutil holds request parsing and error mapping shared by the v1 handlers.
package apiutil

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator"
)

// StatusFor maps a ledger error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateBudget),
		errors.Is(err, ledger.ErrDuplicateReconciliation),
		errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, ledger.ErrReservedCategory):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, operator.ErrStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error converts a service error into a huma error with the mapped status.
func Error(message string, err error) error {
	return huma.NewError(StatusFor(err), message, err)
}

func ParseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, value string) (civil.Date, error) {
	date, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return date, nil
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(field, value string) (*civil.Date, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	date, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func ParseAmount(field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return amount, nil
}
