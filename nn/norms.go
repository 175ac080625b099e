// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	. "github.com/gomlx/gomlx/pkg/core/graph"
)

// GlobalL2Norm returns the L2 norm of all given nodes taken together, as if
// they were concatenated into a single vector. Typical use is monitoring the
// norm of gradients or of all model weights.
//
// All nodes must have the same dtype. It panics on an empty list, like the
// underlying graph ops do on invalid input.
func GlobalL2Norm(nodes ...*Node) *Node {
	sum := ReduceAllSum(Square(nodes[0]))
	for _, node := range nodes[1:] {
		sum = Add(sum, ReduceAllSum(Square(node)))
	}
	return Sqrt(sum)
}
