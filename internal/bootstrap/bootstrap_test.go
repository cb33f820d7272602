package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/prelimplanner/internal/config"
)

func testConfig(t *testing.T) (*config.Config, zerolog.Logger) {
	t.Helper()
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("SCRAPER_ARTIFACT_DIR", t.TempDir())
	t.Setenv("SERVER_MODE", "test")

	cfg, lgr, err := LoadConfigAndSetupLogger(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	return cfg, lgr
}

func TestWiring(t *testing.T) {
	cfg, lgr := testConfig(t)

	database, err := SetupDatabase(context.Background(), cfg, lgr)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	deps, err := BuildDependencies(cfg, database, lgr)
	require.NoError(t, err)
	router := SetupRouter(cfg, deps, lgr)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/exams/tables", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
