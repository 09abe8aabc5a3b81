// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "listeners.yaml"), nil, WithDebounce(-1))
	require.NoError(t, err)
	require.Equal(t, DefaultDebounce, w.debounce)
	require.NoError(t, w.Close())
}

func TestFileWatcher_ReloadsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listeners.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: []\n"), 0o600))

	var reloads atomic.Int32
	w, err := New(path, func(_ context.Context, p string) error {
		if p == path {
			reloads.Add(1)
		}
		return nil
	}, WithDebounce(50*time.Millisecond), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	for range 3 {
		require.NoError(t, os.WriteFile(path, []byte("services: []\n# edit\n"), 0o600))
	}

	require.Eventually(t, func() bool { return reloads.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), reloads.Load())

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listeners.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: []\n"), 0o600))

	var reloads atomic.Int32
	w, err := New(path, func(context.Context, string) error {
		reloads.Add(1)
		return errors.New("not expected")
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(0), reloads.Load())
}

func TestFileWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "listeners.yaml"), nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.Error(t, w.Start(context.Background()))
}
