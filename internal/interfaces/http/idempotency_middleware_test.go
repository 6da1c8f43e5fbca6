package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/ventas-lotes-api/internal/interfaces/http"
	"github.com/jhoicas/ventas-lotes-api/pkg/idempotency"
)

// recordingStore delega en MemoryStore y anota el error del contexto con que se guarda
// la respuesta y se libera el lock.
type recordingStore struct {
	*idempotency.MemoryStore
	mu         sync.Mutex
	saveErr    error
	releaseErr error
	saved      bool
	released   bool
}

func (s *recordingStore) Save(ctx context.Context, key string, resp *idempotency.Response, ttl time.Duration) error {
	s.mu.Lock()
	s.saved, s.saveErr = true, ctx.Err()
	s.mu.Unlock()
	return s.MemoryStore.Save(ctx, key, resp, ttl)
}

func (s *recordingStore) Lock(ctx context.Context, key string, ttl time.Duration) (idempotency.ReleaseFunc, error) {
	release, err := s.MemoryStore.Lock(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		s.mu.Lock()
		s.released, s.releaseErr = true, ctx.Err()
		s.mu.Unlock()
		return release(ctx)
	}, nil
}

func TestIdempotency_ReleasesLockAfterRequestDeadline(t *testing.T) {
	store := &recordingStore{MemoryStore: idempotency.NewMemoryStore()}
	app := fiber.New()
	app.Post("/slow",
		apphttp.RequestTimeout(time.Millisecond),
		apphttp.Idempotency(store, time.Hour),
		func(c *fiber.Ctx) error {
			<-c.UserContext().Done()
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
		},
	)

	req := httptest.NewRequest(http.MethodPost, "/slow", nil)
	req.Header.Set(apphttp.HeaderIdempotencyKey, "k-slow")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.True(t, store.released)
	assert.NoError(t, store.releaseErr)
	require.True(t, store.saved)
	assert.NoError(t, store.saveErr)

	// el lock quedó libre para la siguiente petición con la misma clave
	release, err := store.MemoryStore.Lock(context.Background(), ":POST:/slow:k-slow", time.Second)
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
}
