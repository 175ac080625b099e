// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package harness

import (
	"fmt"
	"path/filepath"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context/checkpoints"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/avlr/boilx/experiment"
)

// Dimensions of the SVG training curves written at the end of a run.
const (
	plotWidth  = 1024
	plotHeight = 400
)

// Run trains exp until its global step reaches config.TrainSteps, evaluating
// every config.EvalInterval steps and checkpointing every
// config.CheckpointInterval steps. It creates the run directory, writes
// checkpoints, the metric history (JSON) and SVG training curves there, and
// prints a final evaluation report.
//
// If the run directory already holds checkpoints -- which cannot happen with
// directories created by this function, but can when resuming manually via
// context loading -- training continues from the checkpointed global step.
//
// Graph building errors panic, as usual for GoMLX; everything else is
// returned as an error.
func Run(backend backends.Backend, exp experiment.Experiment, config *experiment.Config) (*experiment.Run, *History, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	ctx := exp.Context()
	if config.Seed != 0 {
		if err := ctx.SetRNGStateFromSeed(config.Seed); err != nil {
			return nil, nil, errors.WithMessage(err, "setting RNG state from seed")
		}
	} else if err := ctx.ResetRNGState(); err != nil {
		return nil, nil, errors.WithMessage(err, "resetting RNG state")
	}

	run, err := experiment.NewRun(config)
	if err != nil {
		return nil, nil, err
	}
	if run.Dir != "" {
		fmt.Printf("Run %s -> %s\n", run.ID, run.Dir)
	} else {
		fmt.Printf("Run %s (dry run, nothing written)\n", run.ID)
	}

	trainDS, evalDSs, err := exp.Datasets(backend)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "building datasets")
	}

	trainer := train.NewTrainer(backend, ctx,
		exp.Model(), exp.Loss(),
		optimizers.FromContext(ctx),
		exp.TrainMetrics(), exp.EvalMetrics())
	loop := train.NewLoop(trainer)
	commandline.AttachProgressBar(loop)

	var checkpoint *checkpoints.Handler
	if !config.DryRun {
		checkpoint, err = checkpoints.Build(ctx).
			Dir(run.CheckpointDir).
			Keep(config.KeepCheckpoints).
			ExcludeParams(config.ExcludeParams...).
			Done()
		if err != nil {
			return nil, nil, errors.WithMessage(err, "setting up checkpoints")
		}
		if err := run.WriteSettings(ctx); err != nil {
			return nil, nil, err
		}
	}

	var historyPath string
	if run.Dir != "" {
		historyPath = filepath.Join(run.Dir, HistoryFileName)
	}
	history := NewHistory(historyPath)

	train.EveryNSteps(loop, config.EvalInterval, "evaluation", 100,
		func(loop *train.Loop, metrics []*tensors.Tensor) error {
			if err := history.AddTrainAndEvalMetrics(loop, metrics, evalDSs); err != nil {
				return err
			}
			if err := history.Save(); err != nil {
				return err
			}
			if sampler, ok := exp.(experiment.Sampler); ok && !config.DryRun {
				if err := sampler.Sample(backend, run, loop.LoopStep); err != nil {
					return errors.WithMessagef(err, "sampling at step %d", loop.LoopStep)
				}
			}
			return nil
		})
	if checkpoint != nil {
		train.EveryNSteps(loop, config.CheckpointInterval, "checkpointing", 110,
			func(loop *train.Loop, _ []*tensors.Tensor) error {
				klog.V(1).Infof("Saving checkpoint at step %d", loop.LoopStep)
				return checkpoint.Save()
			})
	}

	globalStep := int(optimizers.GetGlobalStep(ctx))
	if globalStep > 0 {
		klog.Infof("Resuming training from global step %d", globalStep)
		trainer.SetContext(ctx.Reuse())
	}
	if globalStep < config.TrainSteps {
		if _, err := loop.RunSteps(trainDS, config.TrainSteps-globalStep); err != nil {
			if checkpoint != nil && loop.LoopStep > loop.StartStep {
				klog.Infof("Saving checkpoint before failing, at loop step %d", loop.LoopStep)
				if errSave := checkpoint.Save(); errSave != nil {
					klog.Errorf("Failed saving checkpoint while failing: %+v", errSave)
				}
			}
			return nil, nil, errors.WithMessage(err, "training loop")
		}
		fmt.Printf("\t[Step %d] median train step: %d microseconds\n",
			loop.LoopStep, loop.MedianTrainStepDuration().Microseconds())
	} else {
		fmt.Printf("\t- target of %d train steps already reached at global step %d, nothing to train\n",
			config.TrainSteps, globalStep)
	}

	if checkpoint != nil {
		if err := checkpoint.Save(); err != nil {
			return nil, nil, errors.WithMessage(err, "saving final checkpoint")
		}
	}
	if err := history.Save(); err != nil {
		return nil, nil, err
	}
	if run.Dir != "" && history.Len() > 0 {
		if err := WritePlots(history, run.Dir, plotWidth, plotHeight); err != nil {
			return nil, nil, err
		}
	}

	if len(evalDSs) > 0 {
		fmt.Println()
		if err := commandline.ReportEval(trainer, evalDSs...); err != nil {
			return nil, nil, errors.WithMessage(err, "final evaluation")
		}
	}
	return run, history, nil
}
