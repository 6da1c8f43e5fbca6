package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, "k1", &Response{Status: 201, ContentType: "application/json", Body: []byte(`{"id":"s1"}`)}, time.Minute))
	got, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.Status)
	assert.JSONEq(t, `{"id":"s1"}`, string(got.Body))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "k1", &Response{Status: 201}, time.Minute))
	now = now.Add(2 * time.Minute)
	got, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Lock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	release, err := s.Lock(ctx, "k1", time.Minute)
	require.NoError(t, err)

	_, err = s.Lock(ctx, "k1", time.Minute)
	assert.ErrorIs(t, err, ErrInProgress)

	_, err = s.Lock(ctx, "k2", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, release(ctx))
	_, err = s.Lock(ctx, "k1", time.Minute)
	assert.NoError(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("a")), Fingerprint([]byte("a")))
	assert.NotEqual(t, Fingerprint([]byte("a")), Fingerprint([]byte("b")))
	assert.Len(t, Fingerprint(nil), 64)
}
