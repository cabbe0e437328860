package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Validationf("bad"), http.StatusBadRequest},
		{domain.Unauthenticatedf("who"), http.StatusUnauthorized},
		{domain.Forbiddenf("no"), http.StatusForbidden},
		{domain.NotFoundf("gone"), http.StatusNotFound},
		{domain.Conflictf("taken"), http.StatusConflict},
		{domain.Unavailable("down", errors.New("eof")), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", domain.Conflictf("taken")), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestError_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/animals/x", nil)

	rec := httptest.NewRecorder()
	Error(rec, req, zap.NewNop(), domain.NotFoundf("animal not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorDetail{Code: "NotFound", Message: "animal not found"}, body.Error)

	rec = httptest.NewRecorder()
	Error(rec, req, nil, errors.New("pq: connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "InternalServerError", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "pq:")
}

func TestCodeName(t *testing.T) {
	assert.Equal(t, "BadRequest", CodeName(http.StatusBadRequest))
	assert.Equal(t, "TooManyRequests", CodeName(http.StatusTooManyRequests))
	assert.Equal(t, "ServiceUnavailable", CodeName(http.StatusServiceUnavailable))
}
