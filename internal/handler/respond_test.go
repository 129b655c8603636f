package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func renderError(t *testing.T, h *Handler, err error) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.writeError(rec, httptest.NewRequest(http.MethodGet, "/projects/mine", nil), err)
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return rec.Code, env
}

func TestWriteErrorHidesCauseOutsideDebug(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := New(Deps{Logger: zap.New(core)})

	status, env := renderError(t, h, apperr.Internal("failed to load project", errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, "failed to load project", env.Message)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())

	status, env = renderError(t, h, errors.New("raw driver error"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", env.Message)
}

func TestWriteErrorShowsCauseInDebug(t *testing.T) {
	h := New(Deps{Debug: true})

	_, env := renderError(t, h, apperr.Internal("failed to load project", errors.New("pq: connection refused")))
	assert.Equal(t, "failed to load project (failed to load project: pq: connection refused)", env.Message)

	status, env := renderError(t, h, apperr.Conflict("completion request already pending"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "completion request already pending", env.Message)
}
