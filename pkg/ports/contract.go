package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// RunSessionStoreContract verifies that a SessionStore implementation adheres
// to the interface contract. Every store adapter runs this suite.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405.000")

	t.Run("save and load", func(t *testing.T) {
		sess := domain.NewSession()
		sess.CurrentState = "await_address"
		sess.Payload["name"] = "Ann"
		sess.Payload["location"] = domain.Location{Latitude: 55.75, Longitude: 37.61}

		require.NoError(t, store.Save(ctx, sessionID, sess))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "await_address", loaded.CurrentState)
		assert.Equal(t, domain.DefaultRole, loaded.Role)
		assert.Equal(t, "Ann", domain.Stringify(loaded.Payload["name"]))

		// JSON-backed stores may round-trip the location as a map; both
		// shapes must stay recognizable.
		loc, ok := domain.AsLocation(loaded.Payload["location"])
		require.True(t, ok, "location must survive persistence")
		assert.InDelta(t, 55.75, loc.Latitude, 1e-9)
		assert.InDelta(t, 37.61, loc.Longitude, 1e-9)
	})

	t.Run("read your writes", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Payload["step"] = 1
		require.NoError(t, store.Save(ctx, sessionID, sess))

		sess.Payload["step"] = 2
		require.NoError(t, store.Save(ctx, sessionID, sess))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "2", domain.Stringify(loaded.Payload["step"]))
	})

	t.Run("load isolation", func(t *testing.T) {
		sess := domain.NewSession()
		sess.Payload["field"] = "original"
		require.NoError(t, store.Save(ctx, sessionID, sess))

		first, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		first.Payload["field"] = "mutated"

		second, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "original", second.Payload["field"],
			"mutating a loaded session must not leak into the store")
	})

	t.Run("load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSession()))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("list", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSession()))
		require.NoError(t, store.Save(ctx, id2, domain.NewSession()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
