package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"sms_campaign_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInitAppliesDefaults(t *testing.T) {
	cfg := &config.LogConfig{LogPath: t.TempDir()}
	require.NoError(t, Init(cfg, "release"))
	assert.Equal(t, filepath.Join(cfg.LogPath, "app.log"), cfg.FileName)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 100, cfg.MaxSize)
}

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(&config.LogConfig{LogPath: t.TempDir(), Level: "loud"}, "release")
	assert.Error(t, err)
	assert.Error(t, Init(nil, "release"))
}

func TestGinLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(GinLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDKey))
	assert.Equal(t, w.Header().Get(RequestIDKey), w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDKey, "abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestGinRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(GinRecovery(true))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsBrokenPipeError(t *testing.T) {
	assert.True(t, isBrokenPipeError(errors.New("write: broken pipe")))
	assert.True(t, isBrokenPipeError(errors.New("read: Connection reset by peer")))
	assert.False(t, isBrokenPipeError(errors.New("timeout")))
	assert.False(t, isBrokenPipeError(nil))
}
