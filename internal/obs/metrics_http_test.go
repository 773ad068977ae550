package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServer_Healthz(t *testing.T) {
	var stopping bool
	ms := NewMetricsServer(":0", func(context.Context) error {
		if stopping {
			return errors.New("monitor is shutting down")
		}
		return nil
	})

	rec := httptest.NewRecorder()
	ms.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	stopping = true
	rec = httptest.NewRecorder()
	ms.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "shutting down")

	rec = httptest.NewRecorder()
	ms.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
