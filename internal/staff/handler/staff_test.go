package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"salonbook/internal/staff/repository"
	"salonbook/internal/staff/service"
	"salonbook/internal/staff/validator"
	"salonbook/pkg/config"
	"salonbook/pkg/logger"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	cfg := &config.Config{Log: log, StaffCacheTTL: time.Minute}
	svc := service.NewStaffService(repository.NewMemoryStaffRepository(), validator.NewStaffValidator(log), nil, cfg)

	router := httprouter.New()
	NewStaffHandler(svc, log).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const snapshot = `{
	"name": "Dana",
	"weekly_schedule": {"Monday": {"is_working": true, "start_time": "09:00", "end_time": "17:00"}},
	"vacations": [{"start_date": "2025-06-09", "end_date": "2025-06-13", "reason": "holiday"}]
}`

func TestStaffHandler_Lifecycle(t *testing.T) {
	router := newTestRouter()

	rec := do(router, http.MethodPut, "/api/v1/staff/s1", snapshot)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/staff/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s1", got.Data.ID)
	assert.Equal(t, "Dana", got.Data.Name)

	rec = do(router, http.MethodGet, "/api/v1/staff/s1/availability?date=2025-06-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"staff_id":"s1","date":"2025-06-02","available":true,"window":{"start":"09:00","end":"17:00"},"reason":"weekly schedule"}}`, rec.Body.String())

	rec = do(router, http.MethodGet, "/api/v1/staff/s1/availability?date=2025-06-09", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"staff_id":"s1","date":"2025-06-09","available":false,"reason":"vacation"}}`, rec.Body.String())

	rec = do(router, http.MethodDelete, "/api/v1/staff/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/staff/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaffHandler_Errors(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPut, "/api/v1/staff/s1", "{", http.StatusBadRequest},
		{"bad time of day", http.MethodPut, "/api/v1/staff/s1", `{"weekly_schedule":{"Monday":{"is_working":true,"start_time":"9am","end_time":"17:00"}}}`, http.StatusBadRequest},
		{"invalid schedule", http.MethodPut, "/api/v1/staff/s1", `{"weekly_schedule":{"Monday":{"is_working":true,"start_time":"17:00","end_time":"09:00"}}}`, http.StatusUnprocessableEntity},
		{"missing date", http.MethodGet, "/api/v1/staff/s1/availability", "", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/v1/staff/s1/availability?date=2025-13-01", "", http.StatusBadRequest},
		{"unknown staff availability", http.MethodGet, "/api/v1/staff/ghost/availability?date=2025-06-02", "", http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/v1/staff/ghost", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
