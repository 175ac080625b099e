// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package vae

import (
	"math/rand"

	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
)

// Generator samples new examples from a trained VAE by decoding latent
// vectors drawn from the unit gaussian prior. Build it after the model
// variables exist (after at least one training or inference step).
type Generator struct {
	exec      *context.Exec
	latentDim int
	rng       *rand.Rand
}

// NewGenerator creates a Generator decoding to outputDims-shaped examples
// (without the batch dimension), e.g. NewGenerator(backend, ctx, 28, 28, 1)
// for MNIST. ctx must be the context the model was trained with.
func NewGenerator(backend backends.Backend, ctx *context.Context, outputDims ...int) *Generator {
	outputDim := 1
	for _, dim := range outputDims {
		outputDim *= dim
	}
	decoderCtx := ctx.Reuse()
	exec := context.MustNewExec(backend, decoderCtx,
		func(ctx *context.Context, latent *Node) *Node {
			logits := DecoderGraph(ctx.In(ModelScope).In("decoder"), latent, outputDim)
			batchSize := latent.Shape().Dimensions[0]
			return Reshape(Sigmoid(logits), append([]int{batchSize}, outputDims...)...)
		})
	return &Generator{
		exec:      exec,
		latentDim: context.GetParamOr(ctx, ParamLatentDim, 32),
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// WithRand sets the random number generator used to sample latent vectors,
// for reproducible sampling. It returns the generator to allow cascaded
// calls.
func (g *Generator) WithRand(rng *rand.Rand) *Generator {
	g.rng = rng
	return g
}

// Generate decodes numSamples latent vectors drawn from the prior and
// returns the generated examples, shaped [numSamples, <outputDims>...] with
// values in [0, 1].
func (g *Generator) Generate(numSamples int) (*tensors.Tensor, error) {
	data := make([]float32, numSamples*g.latentDim)
	for ii := range data {
		data[ii] = float32(g.rng.NormFloat64())
	}
	latent := tensors.FromFlatDataAndDimensions(data, numSamples, g.latentDim)
	return g.exec.Exec1(latent)
}
