package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/impulse/internal/config"
	"github.com/zeusync/impulse/internal/core/observability/log"
)

var scenes = []string{
	"../../examples/scenes/pendulum.yaml",
	"../../examples/scenes/chain.yaml",
	"../../examples/scenes/springs.json",
}

func TestRunScene(t *testing.T) {
	t.Run("Example scenes", func(t *testing.T) {
		for _, path := range scenes {
			path := path
			t.Run(filepath.Base(path), func(t *testing.T) {
				s, err := runScene(context.Background(), path, 120, log.NewNop())
				require.NoError(t, err)
				require.Equal(t, uint64(120), s.Steps)
				require.NotEmpty(t, s.Scene)
				require.Positive(t, s.Stats.Bodies)
			})
		}
	})

	t.Run("Reproducible", func(t *testing.T) {
		first, err := runScene(context.Background(), scenes[1], 300, log.NewNop())
		require.NoError(t, err)
		second, err := runScene(context.Background(), scenes[1], 300, log.NewNop())
		require.NoError(t, err)
		require.Equal(t, first.Hash, second.Hash)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runScene(ctx, scenes[0], 0, log.NewNop())
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Bad scene", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scene:\n  constraints:\n    - {type: distance, a: x, b: y}\n"), 0o600))
		_, err := runScene(context.Background(), path, 1, log.NewNop())
		require.ErrorIs(t, err, config.ErrUnknownBody)
	})
}

func TestBatch(t *testing.T) {
	require.NoError(t, batch(context.Background(), scenes, 60, 2, log.NewNop()))

	err := batch(context.Background(), append([]string{"missing.yaml"}, scenes...), 60, 0, log.NewNop())
	require.ErrorIs(t, err, os.ErrNotExist)
}
