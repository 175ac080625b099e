// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package experiment

import (
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/gomlx/gomlx/pkg/ml/train/metrics"
)

// Experiment holds the model- and experiment-specific parts of a training
// run. The harness does the rest: trainer, loop, checkpoints, history.
type Experiment interface {
	// Context returns the context holding the model hyperparameters (and,
	// after training starts, the model variables). The same context must be
	// returned on every call.
	Context() *context.Context

	// Model returns the model graph building function.
	Model() train.ModelFn

	// Loss returns the loss used for training. Models that compute their loss
	// inside the graph return it as one of the model outputs and use a loss
	// function that just selects it.
	Loss() losses.LossFn

	// Datasets returns the training dataset -- typically infinite, batched and
	// shuffled -- and the list of datasets to evaluate on at every evaluation
	// interval (e.g. a non-shuffled sample of train data and a validation
	// split). evalDSs may be empty.
	Datasets(backend backends.Backend) (trainDS train.Dataset, evalDSs []train.Dataset, err error)

	// TrainMetrics and EvalMetrics return extra metrics for the trainer.
	// The trainer always includes loss metrics, so returning nil is fine.
	TrainMetrics() []metrics.Interface
	EvalMetrics() []metrics.Interface
}

// Sampler is optionally implemented by experiments that write extra artifacts
// (generated samples, reconstructions, plots of their own) during evaluation.
// It is called after the metrics of each evaluation are collected, and never
// called on dry runs.
type Sampler interface {
	Sample(backend backends.Backend, run *Run, step int) error
}

// Base provides defaults for the optional parts of an Experiment. Embed it
// and implement the rest.
type Base struct{}

func (b Base) TrainMetrics() []metrics.Interface { return nil }
func (b Base) EvalMetrics() []metrics.Interface  { return nil }
