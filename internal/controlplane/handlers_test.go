package controlplane

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

func newTestRouter() (http.Handler, *faultstore.Registry) {
	reg := faultstore.New()
	adapter := NewAdapter(reg)
	return NewRouter(adapter, zerolog.Nop(), nil), reg
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateFaultReturns201(t *testing.T) {
	router, _ := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "d", "fault_type": "delay", "duration": 500, "command": "GET",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var dto faultPlanDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "Delay", dto.FaultType)
	assert.Equal(t, "GET", dto.Command)
	require.NotNil(t, dto.DurationMs)
	assert.EqualValues(t, 500, *dto.DurationMs)
}

func TestCreateFaultInvalidReturns400(t *testing.T) {
	router, _ := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "", "fault_type": "delay", "command": "GET",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFaultDuplicateNameReturns409(t *testing.T) {
	router, _ := newTestRouter()
	plan := map[string]any{"name": "d", "fault_type": "delay", "duration": 10, "command": "GET"}
	doJSON(t, router, http.MethodPost, "/fault", plan)

	rec := doJSON(t, router, http.MethodPost, "/fault", plan)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateFaultDuplicateCommandReturns409(t *testing.T) {
	router, _ := newTestRouter()
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "d1", "fault_type": "delay", "duration": 10, "command": "GET",
	})
	rec := doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "d2", "fault_type": "error", "error_msg": "boom", "command": "GET",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetFaultNotFoundReturns404(t *testing.T) {
	router, _ := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/fault/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFaultFound(t *testing.T) {
	router, _ := newTestRouter()
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "e", "fault_type": "Error", "error_msg": "Invalid Key", "command": "set",
	})

	rec := doJSON(t, router, http.MethodGet, "/fault/e", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto faultPlanDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "SET", dto.Command)
	assert.Equal(t, "Invalid Key", dto.ErrorMsg)
}

func TestListFaults(t *testing.T) {
	router, _ := newTestRouter()
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "a", "fault_type": "delay", "duration": 1, "command": "GET",
	})
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "b", "fault_type": "delay", "duration": 1, "command": "SET",
	})

	rec := doJSON(t, router, http.MethodGet, "/faults", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []faultPlanDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	assert.Len(t, dtos, 2)
}

func TestDeleteFaultNotFoundReturns404(t *testing.T) {
	router, _ := newTestRouter()
	rec := doJSON(t, router, http.MethodDelete, "/fault/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFaultRoundTrips(t *testing.T) {
	router, reg := newTestRouter()
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "d", "fault_type": "delay", "duration": 1, "command": "GET",
	})

	rec := doJSON(t, router, http.MethodDelete, "/fault/d", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, reg.List())
}

func TestDeleteAllFaults(t *testing.T) {
	router, reg := newTestRouter()
	doJSON(t, router, http.MethodPost, "/fault", map[string]any{
		"name": "a", "fault_type": "delay", "duration": 1, "command": "GET",
	})
	rec := doJSON(t, router, http.MethodDelete, "/faults", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, reg.List())
}

func TestStatsEndpoint(t *testing.T) {
	router, reg := newTestRouter()
	reg.RecordRequest()
	reg.RecordDelay()

	rec := doJSON(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto statsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.EqualValues(t, 1, dto.TotalRequests)
	assert.EqualValues(t, 1, dto.DelayedRequests)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
