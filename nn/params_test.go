// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestContext() *context.Context {
	ctx := context.New()
	layer0 := ctx.In("model").In("000_dense")
	layer0.VariableWithValue("weights", [][]float32{{1, 2, 3}, {4, 5, 6}}) // 6 params
	layer0.VariableWithValue("biases", []float32{0, 0, 0})                 // 3 params
	layer1 := ctx.In("model").In("001_dense")
	layer1.VariableWithValue("weights", [][]float32{{1}, {2}, {3}}) // 3 params
	counter := ctx.VariableWithValue("global_step", int64(7))
	counter.Trainable = false
	return ctx
}

func TestNumTrainableParams(t *testing.T) {
	ctx := buildTestContext()
	assert.Equal(t, 12, NumTrainableParams(ctx))
}

func TestParamsByScope(t *testing.T) {
	ctx := buildTestContext()

	byLayer := ParamsByScope(ctx, 2)
	require.Len(t, byLayer, 2)
	counts := map[string]int{}
	for _, group := range byLayer {
		counts[group.Scope] = group.NumParams
	}
	assert.Equal(t, 9, counts["/model/000_dense"])
	assert.Equal(t, 3, counts["/model/001_dense"])

	byModel := ParamsByScope(ctx, 1)
	require.Len(t, byModel, 1)
	assert.Equal(t, "/model", byModel[0].Scope)
	assert.Equal(t, 12, byModel[0].NumParams)
}

func TestParamsSummary(t *testing.T) {
	ctx := buildTestContext()
	summary := ParamsSummary(ctx, 1)
	assert.Contains(t, summary, "/model")
	assert.Contains(t, summary, "12 parameters")
}
