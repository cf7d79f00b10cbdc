package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	healthMux(logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
