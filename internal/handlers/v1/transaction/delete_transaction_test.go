package transaction

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/site-ledger/internal/ledger"
)

type mockTransactionDeleter struct {
	mock.Mock
}

func (m *mockTransactionDeleter) DeleteTransaction(ctx context.Context, id, managerID uuid.UUID) error {
	return m.Called(ctx, id, managerID).Error(0)
}

func newDeleteTestAPI(t *testing.T, svc transactionDeleter) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewDeleteTransactionHandler(svc).Register(api)
	return api
}

func TestHTTP_DeleteTransaction_Success(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	managerID := uuid.Must(uuid.NewV4())
	mockSvc := new(mockTransactionDeleter)
	mockSvc.On("DeleteTransaction", mock.Anything, id, managerID).Return(nil)

	resp := newDeleteTestAPI(t, mockSvc).Delete("/v1/transaction/" + id.String() + "?managerID=" + managerID.String())

	assert.Equal(t, http.StatusNoContent, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DeleteTransaction_NotCreator(t *testing.T) {
	mockSvc := new(mockTransactionDeleter)
	mockSvc.On("DeleteTransaction", mock.Anything, mock.Anything, mock.Anything).Return(ledger.ErrNotCreator)

	resp := newDeleteTestAPI(t, mockSvc).Delete("/v1/transaction/" + uuid.Must(uuid.NewV4()).String() + "?managerID=" + uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestHTTP_DeleteTransaction_MissingManager(t *testing.T) {
	mockSvc := new(mockTransactionDeleter)

	resp := newDeleteTestAPI(t, mockSvc).Delete("/v1/transaction/" + uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "DeleteTransaction")
}
