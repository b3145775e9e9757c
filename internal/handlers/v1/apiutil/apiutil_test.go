package apiutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/site-ledger/internal/ledger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", &ledger.NotFoundError{Kind: "site", ID: uuid.Must(uuid.NewV4())}, http.StatusNotFound},
		{"duplicate budget", &ledger.DuplicateBudgetError{}, http.StatusConflict},
		{"conflict", fmt.Errorf("insert: %w", ledger.ErrConflict), http.StatusConflict},
		{"invalid", fmt.Errorf("%w: amount", ledger.ErrInvalidEntry), http.StatusBadRequest},
		{"reserved", ledger.ErrReservedCategory, http.StatusBadRequest},
		{"not creator", ledger.ErrNotCreator, http.StatusForbidden},
		{"store down", fmt.Errorf("op: %w: %w", ledger.ErrStoreUnavailable, errors.New("dial")), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestError_CarriesStatus(t *testing.T) {
	err := Error("failed to apply budget", ledger.ErrNotCreator)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.GetStatus())
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("date", "2025-06-01")
	assert.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 1}, date)

	_, err = ParseDate("date", "06/01/2025")
	assert.Error(t, err)

	optional, err := ParseOptionalDate("from", "")
	assert.NoError(t, err)
	assert.Nil(t, optional)
}
