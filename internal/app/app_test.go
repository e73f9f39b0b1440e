package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-forge-api/internal/config"
	"idea-forge-api/internal/domain/entity"
	"idea-forge-api/internal/domain/service"
	"idea-forge-api/internal/infrastructure/persistence/memory"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "idea-forge-api"
	cfg.App.Env = "test"
	cfg.Generation.Timeout = 5 * time.Second
	cfg.Session.BatchTTL = time.Hour
	cfg.Session.InFlightTTL = time.Minute
	cfg.Session.MemoryCapacity = 8
	return cfg
}

func TestInitializeWithoutExternalStores(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen := service.IdeaGeneratorFunc(func(ctx context.Context, req entity.GenerationRequest) (*service.GenerationOutput, error) {
		return nil, &entity.GenerationFailure{Cause: context.DeadlineExceeded}
	})

	app, cleanup, err := InitializeWithGenerator(context.Background(), testConfig(), gen)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, app.PgClient)
	assert.Nil(t, app.RedisClient)

	w := httptest.NewRecorder()
	app.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"disabled"`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/s1/generations", strings.NewReader(`{"domain":"education","audience":"teachers"}`))
	req.Header.Set("Content-Type", "application/json")
	app.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestProvidersFallBackToMemory(t *testing.T) {
	cfg := testConfig()

	store := ProvideSessionStore(cfg, nil)
	_, ok := store.(*memory.SessionStore)
	assert.True(t, ok)

	assert.Nil(t, ProvideJobRepository(nil, nil))
	assert.Nil(t, ProvideRateLimiter(nil))
}
