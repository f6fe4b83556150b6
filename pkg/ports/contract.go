package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	key := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := []byte(`{"currentStepId":"praise","feedback":{"reason":"Didn't see the value"}}`)

		err := store.Save(ctx, key, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record, loaded)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, []byte(`{"currentStepId":"reason","feedback":{}}`)))
		require.NoError(t, store.Save(ctx, key, []byte(`{"currentStepId":"comment","feedback":{}}`)))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, `{"currentStepId":"comment","feedback":{}}`, string(loaded))
	})

	t.Run("Opaque Records", func(t *testing.T) {
		// Stores must not interpret what they keep; corrupt records are handled upstream.
		garbage := []byte("{not json")
		require.NoError(t, store.Save(ctx, key+"-garbage", garbage))
		defer func() { _ = store.Delete(ctx, key+"-garbage") }()

		loaded, err := store.Load(ctx, key+"-garbage")
		require.NoError(t, err)
		assert.Equal(t, garbage, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, key, []byte(`{"currentStepId":"reason","feedback":{}}`))
		require.NoError(t, err)

		err = store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting twice should be harmless")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, []byte(`{"currentStepId":"reason","feedback":{}}`))
		_ = store.Save(ctx, id2, []byte(`{"currentStepId":"reason","feedback":{}}`))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
