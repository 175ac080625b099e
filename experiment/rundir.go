// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Names of the artifacts inside a run directory.
const (
	CheckpointsSubDir = "checkpoints"
	SamplesSubDir     = "samples"
	SettingsFileName  = "settings.txt"
)

// Run is one training run: a validated Config plus the directories where the
// run's artifacts are written. On dry runs all directory fields are empty.
type Run struct {
	Config *Config

	// ID identifies the run, "<timestamp>_<description>_<uid>". It is the name
	// of the run directory.
	ID string

	// Dir is the run directory, and CheckpointDir / SamplesDir the
	// subdirectories for checkpoints and extra artifacts. All empty on dry
	// runs.
	Dir, CheckpointDir, SamplesDir string
}

// NewRun validates the config, allocates a run ID and, except on dry runs,
// creates the run directory tree under Config.BaseDir.
func NewRun(config *Config) (*Run, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	run := &Run{
		Config: config,
		ID: fmt.Sprintf("%s_%s_%s",
			time.Now().Format("060102_150405"),
			sanitizeDescription(config.Description),
			uuid.NewString()[:8]),
	}
	if config.DryRun {
		return run, nil
	}

	baseDir, err := fsutil.ReplaceTildeInDir(config.BaseDir)
	if err != nil {
		return nil, errors.WithMessagef(err, "expanding BaseDir %q", config.BaseDir)
	}
	run.Dir = filepath.Join(baseDir, run.ID)
	run.CheckpointDir = filepath.Join(run.Dir, CheckpointsSubDir)
	run.SamplesDir = filepath.Join(run.Dir, SamplesSubDir)
	for _, dir := range []string{run.Dir, run.CheckpointDir, run.SamplesDir} {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, errors.Wrapf(err, "creating run directory %q", dir)
		}
	}
	return run, nil
}

// WriteSettings saves the context parameters (hyperparameters) of the run to
// SettingsFileName in the run directory. No-op on dry runs.
func (r *Run) WriteSettings(ctx *context.Context) error {
	if r.Dir == "" {
		return nil
	}
	settings := commandline.SprintContextSettings(ctx)
	filePath := filepath.Join(r.Dir, SettingsFileName)
	if err := os.WriteFile(filePath, []byte(settings), 0666); err != nil {
		return errors.Wrapf(err, "writing settings to %q", filePath)
	}
	return nil
}

// sanitizeDescription makes a run description safe to use as a directory name
// component.
func sanitizeDescription(description string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, description)
}
