// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"testing"

	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/stretchr/testify/assert"

	_ "github.com/gomlx/gomlx/backends/default"
)

func TestGlobalL2Norm(t *testing.T) {
	backend := graphtest.BuildTestBackend()

	exec := MustNewExec(backend, func(a, b *Node) *Node {
		return GlobalL2Norm(a, b)
	})
	norm := tensors.ToScalar[float32](exec.MustExec([]float32{3, 0}, []float32{0, 4})[0])
	assert.InDelta(t, 5.0, norm, 1e-5)

	single := MustNewExec(backend, func(a *Node) *Node {
		return GlobalL2Norm(a)
	})
	norm = tensors.ToScalar[float32](single.MustExec([][]float32{{1, 2}, {2, 4}})[0])
	assert.InDelta(t, 5.0, norm, 1e-5)
}
