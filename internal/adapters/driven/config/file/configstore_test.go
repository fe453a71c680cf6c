package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Run("starts empty without a config file", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		_, ok := store.Get("anything")
		assert.False(t, ok)
	})

	t.Run("set save load round trips", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		store.Set("model", "gemini-2.5-flash")
		store.Set("batch_size", int64(7))
		store.Set("verbose", true)
		require.NoError(t, store.Save())

		reloaded, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", reloaded.GetString("model"))
		assert.Equal(t, 7, reloaded.GetInt("batch_size"))
		assert.True(t, reloaded.GetBool("verbose"))
	})

	t.Run("typed getters return zero values for wrong types", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		store.Set("key", "a string")
		assert.Equal(t, 0, store.GetInt("key"))
		assert.False(t, store.GetBool("key"))
		assert.Empty(t, store.GetString("missing"))
	})

	t.Run("watch reloads after an on-disk edit", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var reloads atomic.Int32
		go func() {
			_ = store.Watch(ctx, func() { reloads.Add(1) })
		}()

		// Give the watcher a moment to register.
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("batch_size = 9\n"), 0600))

		require.Eventually(t, func() bool {
			return reloads.Load() > 0
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, 9, store.GetInt("batch_size"))
	})
}
