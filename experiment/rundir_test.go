// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCreatesDirectories(t *testing.T) {
	config := NewConfig("my vae run")
	config.BaseDir = t.TempDir()
	run, err := NewRun(config)
	require.NoError(t, err)

	assert.Contains(t, run.ID, "my_vae_run")
	assert.Equal(t, filepath.Join(run.Dir, CheckpointsSubDir), run.CheckpointDir)
	assert.Equal(t, filepath.Join(run.Dir, SamplesSubDir), run.SamplesDir)
	for _, dir := range []string{run.Dir, run.CheckpointDir, run.SamplesDir} {
		info, err := os.Stat(dir)
		require.NoErrorf(t, err, "directory %q should exist", dir)
		assert.True(t, info.IsDir())
	}
}

func TestNewRunIDsAreUnique(t *testing.T) {
	config := NewConfig("collision")
	config.BaseDir = t.TempDir()
	run1, err := NewRun(config)
	require.NoError(t, err)
	run2, err := NewRun(config)
	require.NoError(t, err)
	assert.NotEqual(t, run1.ID, run2.ID)
}

func TestNewRunDryRun(t *testing.T) {
	baseDir := t.TempDir()
	config := NewConfig("dry")
	config.BaseDir = baseDir
	config.DryRun = true
	run, err := NewRun(config)
	require.NoError(t, err)
	assert.Empty(t, run.Dir)
	assert.Empty(t, run.CheckpointDir)

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not create directories")

	// WriteSettings must be a no-op as well.
	require.NoError(t, run.WriteSettings(context.New()))
}

func TestNewRunRejectsInvalidConfig(t *testing.T) {
	config := NewConfig("")
	_, err := NewRun(config)
	assert.Error(t, err)
}

func TestWriteSettings(t *testing.T) {
	config := NewConfig("settings")
	config.BaseDir = t.TempDir()
	run, err := NewRun(config)
	require.NoError(t, err)

	ctx := context.New()
	ctx.SetParam("learning_rate", 0.001)
	ctx.SetParam("batch_size", 128)
	require.NoError(t, run.WriteSettings(ctx))

	contents, err := os.ReadFile(filepath.Join(run.Dir, SettingsFileName))
	require.NoError(t, err)
	text := string(contents)
	assert.True(t, strings.Contains(text, "learning_rate"), "settings should mention learning_rate, got:\n%s", text)
	assert.True(t, strings.Contains(text, "batch_size"), "settings should mention batch_size, got:\n%s", text)
}
