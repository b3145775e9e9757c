package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/operator"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.New()
	delegator := operator.NewOperatorDelegator(store, 2, time.Second, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	rest := &Rest{
		Logger:  logger,
		Service: service.NewService(store, delegator, events.NopPublisher{}, 2, logger),
		Store:   store,
	}
	server := httptest.NewServer(rest.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRest_Status(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRest_CarryforwardFlow(t *testing.T) {
	server := newTestServer(t)
	managerID := uuid.Must(uuid.NewV4()).String()

	resp := postJSON(t, server.URL+"/v1/site", map[string]any{
		"name":      "Harbour Tower",
		"managerID": managerID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	siteID := decode(t, resp)["id"].(string)

	resp = postJSON(t, server.URL+"/v1/site/"+siteID+"/budget", map[string]any{
		"managerID": managerID,
		"date":      "2025-06-01",
		"amount":    "5000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/v1/transaction", map[string]any{
		"siteID":    siteID,
		"managerID": managerID,
		"type":      "OUTWARD",
		"amount":    "3000",
		"category":  "Materials",
		"date":      "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, server.URL+"/v1/site/"+siteID+"/reconcile", map[string]any{"date": "2025-06-01"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	record := decode(t, resp)["carryforward"].(map[string]any)
	assert.Equal(t, "2000", record["amount"])

	resp = postJSON(t, server.URL+"/v1/site/"+siteID+"/budget", map[string]any{
		"managerID": managerID,
		"date":      "2025-06-02",
		"amount":    "1000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "3000", decode(t, resp)["effectiveTotal"])

	resp = postJSON(t, server.URL+"/v1/site/"+siteID+"/budget", map[string]any{
		"managerID": managerID,
		"date":      "2025-06-02",
		"amount":    "1000",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
