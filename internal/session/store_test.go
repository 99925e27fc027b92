package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestKeysAreDisjoint(t *testing.T) {
	phone := domain.Phone{CountryCode: "+91", Number: "9876543210"}
	require.Equal(t, "otp:+919876543210", OTPKey(phone))
	require.Equal(t, "session:abc", RefreshKey("abc"))
	require.NotEqual(t, OTPKey(domain.Phone{Number: "abc"}), RefreshKey("abc"))
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStoreWithClock(clock.Now)

	require.NoError(t, store.Set(ctx, "otp:+911234567890", "123456", 180*time.Second))

	clock.Advance(179 * time.Second)
	value, found, err := store.Get(ctx, "otp:+911234567890")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "123456", value)

	clock.Advance(time.Second)
	_, found, err = store.Get(ctx, "otp:+911234567890")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreOverwriteAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, RefreshKey("u1"), "first", time.Hour))
	require.NoError(t, store.Set(ctx, RefreshKey("u1"), "second", time.Hour))

	value, found, err := store.Get(ctx, RefreshKey("u1"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "second", value)

	require.NoError(t, store.Delete(ctx, RefreshKey("u1")))
	require.NoError(t, store.Delete(ctx, RefreshKey("u1")))
	_, found, err = store.Get(ctx, RefreshKey("u1"))
	require.NoError(t, err)
	require.False(t, found)
}
