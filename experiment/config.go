// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

// Package experiment defines what a training run is made of: the Experiment
// interface with the model- and experiment-specific parts, the run Config,
// and the per-run output directory bookkeeping.
package experiment

import (
	"github.com/pkg/errors"
)

// Config holds the generic (model-independent) settings of a training run.
//
// Model hyperparameters don't live here: they ride on the *context.Context
// returned by Experiment.Context, as usual for GoMLX.
type Config struct {
	// Description is a short free-form description of the run. It becomes part
	// of the run directory name, so keep it filesystem friendly.
	Description string

	// BaseDir is the directory under which per-run directories are created.
	// A leading "~" is expanded to the user's home directory.
	BaseDir string

	// Seed for the context random number generator. If 0 the RNG state is
	// initialized with a random value instead.
	Seed int64

	// TrainSteps is the target global step: training runs until the model's
	// global step reaches it, so resuming from a checkpoint trains only the
	// remaining steps.
	TrainSteps int

	// EvalInterval is the number of training steps between evaluations. Each
	// evaluation appends the current train and eval metrics to the run history.
	EvalInterval int

	// CheckpointInterval is the number of training steps between checkpoint
	// saves. It must be a multiple of EvalInterval.
	CheckpointInterval int

	// KeepCheckpoints is how many past checkpoints to keep in the run
	// directory. Older ones are garbage collected.
	KeepCheckpoints int

	// ExcludeParams lists context parameters not to be saved with checkpoints,
	// typically the ones that shouldn't be restored when resuming (data
	// directories, number of steps, etc.).
	ExcludeParams []string

	// DryRun disables all writing: no run directory, no checkpoints, no
	// history file. Useful to check that a model trains at all.
	DryRun bool
}

// NewConfig returns a Config with the defaults used by the bundled examples.
func NewConfig(description string) *Config {
	return &Config{
		Description:        description,
		BaseDir:            "results",
		TrainSteps:         10_000,
		EvalInterval:       1_000,
		CheckpointInterval: 5_000,
		KeepCheckpoints:    3,
	}
}

// Validate returns an error if the configuration is inconsistent.
func (c *Config) Validate() error {
	if c.Description == "" {
		return errors.New("config: Description must not be empty")
	}
	if c.TrainSteps <= 0 {
		return errors.Errorf("config: TrainSteps must be > 0, got %d", c.TrainSteps)
	}
	if c.EvalInterval <= 0 {
		return errors.Errorf("config: EvalInterval must be > 0, got %d", c.EvalInterval)
	}
	if c.CheckpointInterval <= 0 {
		return errors.Errorf("config: CheckpointInterval must be > 0, got %d", c.CheckpointInterval)
	}
	if c.CheckpointInterval%c.EvalInterval != 0 {
		return errors.Errorf("config: CheckpointInterval (%d) must be a multiple of EvalInterval (%d)",
			c.CheckpointInterval, c.EvalInterval)
	}
	if c.KeepCheckpoints <= 0 {
		return errors.Errorf("config: KeepCheckpoints must be > 0, got %d", c.KeepCheckpoints)
	}
	if !c.DryRun && c.BaseDir == "" {
		return errors.New("config: BaseDir must not be empty unless DryRun is set")
	}
	return nil
}
