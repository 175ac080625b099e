// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

// Package vae implements a fully-connected variational autoencoder, the
// bundled example model of this repository.
//
// The model flattens its input, encodes it to a gaussian posterior over a
// latent space, samples with the reparameterization trick during training
// (uses the posterior mean at inference), and decodes back to logits over the
// input space. The ELBO loss (binary cross-entropy reconstruction plus
// KL divergence to the unit gaussian prior) is computed inside the model
// graph and returned as the second output; use Loss as the trainer's loss
// function to select it.
package vae

import (
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
)

// Hyperparameters, read from the context.
const (
	// ParamLatentDim is the dimension of the latent space. Default: 32.
	ParamLatentDim = "vae_latent_dim"

	// ParamHiddenDim is the width of the hidden layers of both the encoder
	// and the decoder. Default: 512.
	ParamHiddenDim = "vae_hidden_dim"

	// ParamNumHiddenLayers is the number of hidden layers of both the
	// encoder and the decoder. Default: 2.
	ParamNumHiddenLayers = "vae_hidden_layers"

	// ParamBeta scales the KL term of the loss ("beta-VAE"). Default: 1.0.
	ParamBeta = "vae_beta"
)

// Scope under which all model variables are created.
const ModelScope = "vae"

// ModelGraph is the train.ModelFn of the VAE.
//
// inputs: one tensor with shape [batchSize, <any image/feature dims>...].
// It returns the reconstruction (same shape as the input, values in [0, 1])
// and the scalar ELBO loss.
func ModelGraph(ctx *context.Context, spec any, inputs []*Node) []*Node {
	_ = spec
	x := inputs[0]
	g := x.Graph()
	batchSize := x.Shape().Dimensions[0]
	featureDim := x.Shape().Size() / batchSize
	flat := Reshape(x, batchSize, featureDim)

	ctx = ctx.In(ModelScope)
	mean, logVariance := EncoderGraph(ctx.In("encoder"), flat)
	latent := mean
	if ctx.IsTraining(g) {
		noise := ctx.RandomNormal(g, mean.Shape())
		latent = Add(mean, Mul(noise, Exp(MulScalar(logVariance, 0.5))))
	}
	logits := DecoderGraph(ctx.In("decoder"), latent, featureDim)

	loss := lossGraph(ctx, flat, logits, mean, logVariance)
	reconstruction := Reshape(Sigmoid(logits), x.Shape().Dimensions...)
	return []*Node{reconstruction, loss}
}

// Loss is the losses.LossFn to train the VAE with: the model computes its
// ELBO inside the graph and returns it as the second output.
func Loss(labels, predictions []*Node) *Node {
	_ = labels
	return predictions[1]
}

// EncoderGraph builds the encoder over the flattened input, returning the
// mean and log-variance of the gaussian posterior, each shaped
// [batchSize, latentDim].
func EncoderGraph(ctx *context.Context, flat *Node) (mean, logVariance *Node) {
	hidden := hiddenLayers(ctx, flat)
	latentDim := context.GetParamOr(ctx, ParamLatentDim, 32)
	mean = layers.Dense(ctx.In("mean"), hidden, true, latentDim)
	logVariance = layers.Dense(ctx.In("log_variance"), hidden, true, latentDim)
	return
}

// DecoderGraph builds the decoder from a latent sample to logits over the
// flattened input space, shaped [batchSize, outputDim].
func DecoderGraph(ctx *context.Context, latent *Node, outputDim int) *Node {
	hidden := hiddenLayers(ctx, latent)
	return layers.Dense(ctx.In("logits"), hidden, true, outputDim)
}

func hiddenLayers(ctx *context.Context, input *Node) *Node {
	numLayers := context.GetParamOr(ctx, ParamNumHiddenLayers, 2)
	hiddenDim := context.GetParamOr(ctx, ParamHiddenDim, 512)
	hidden := input
	for ii := 0; ii < numLayers; ii++ {
		hidden = layers.Dense(ctx.Inf("%03d_dense", ii), hidden, true, hiddenDim)
		hidden = activations.ApplyFromContext(ctx, hidden)
	}
	return hidden
}

// lossGraph returns the mean over the batch of the per-example ELBO:
// sum of binary cross-entropy over the features plus beta times the
// KL divergence of the posterior from the unit gaussian prior.
func lossGraph(ctx *context.Context, flat, logits, mean, logVariance *Node) *Node {
	beta := context.GetParamOr(ctx, ParamBeta, 1.0)
	bce := losses.BinaryCrossentropyLogits([]*Node{flat}, []*Node{logits})
	reconstruction := ReduceSum(bce, -1)
	kl := MulScalar(
		ReduceSum(
			Sub(OnePlus(logVariance), Add(Square(mean), Exp(logVariance))),
			-1),
		-0.5)
	return ReduceAllMean(Add(reconstruction, MulScalar(kl, beta)))
}
