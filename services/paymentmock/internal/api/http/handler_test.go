package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func processPayment(t *testing.T, failureRate float64) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	h := NewHandler(zap.NewNop(), failureRate, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process",
		strings.NewReader(`{"order_id":"order_1","amount":59900,"card_details":"...sensitive data..."}`))
	rec := httptest.NewRecorder()

	h.ProcessPayment(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestProcessPayment_Success(t *testing.T) {
	// failure rate 0: платёж всегда успешен
	rec, body := processPayment(t, 0.0)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Payment processed successfully", body["message"])
	assert.NotEmpty(t, body["timestamp"])

	transactionID, _ := body["transactionId"].(string)
	assert.True(t, strings.HasPrefix(transactionID, "txn_succ_"))
}

func TestProcessPayment_Failure(t *testing.T) {
	// failure rate 1: платёж всегда отклоняется
	rec, body := processPayment(t, 1.0)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["timestamp"])

	transactionID, _ := body["transactionId"].(string)
	assert.True(t, strings.HasPrefix(transactionID, "txn_fail_"))

	failureReason, _ := body["failureReason"].(string)
	assert.Contains(t, failureReasons, failureReason)
}

func TestProcessPayment_RouterWiring(t *testing.T) {
	router := NewRouter(NewHandler(zap.NewNop(), 0.0, 0), func() bool { return true }, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
