// Copyright 2026 The Boilx Authors. SPDX-License-Identifier: Apache-2.0

// Package nn holds small helpers on top of GoMLX contexts and graphs that
// the harness and example programs share.
package nn

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/pkg/ml/context"
)

// ScopeParams is the number of trainable parameters under one scope prefix.
type ScopeParams struct {
	Scope     string
	NumParams int
}

// ParamsByScope returns the number of trainable parameters grouped by scope,
// truncated to maxDepth scope components (0 means no grouping, each variable
// on its own). Groups come in the order their first variable appears.
func ParamsByScope(ctx *context.Context, maxDepth int) []ScopeParams {
	index := make(map[string]int)
	var groups []ScopeParams
	ctx.EnumerateVariables(func(v *context.Variable) {
		if !v.Trainable {
			return
		}
		scope := v.ScopeAndName()
		if maxDepth > 0 {
			parts := strings.Split(strings.TrimPrefix(scope, context.ScopeSeparator), context.ScopeSeparator)
			if len(parts) > maxDepth {
				parts = parts[:maxDepth]
			}
			scope = context.ScopeSeparator + strings.Join(parts, context.ScopeSeparator)
		}
		idx, found := index[scope]
		if !found {
			idx = len(groups)
			index[scope] = idx
			groups = append(groups, ScopeParams{Scope: scope})
		}
		groups[idx].NumParams += v.Shape().Size()
	})
	return groups
}

// NumTrainableParams returns the total number of trainable parameters in ctx.
func NumTrainableParams(ctx *context.Context) int {
	total := 0
	ctx.EnumerateVariables(func(v *context.Variable) {
		if v.Trainable {
			total += v.Shape().Size()
		}
	})
	return total
}

// ParamsSummary formats an overview of the trainable parameters grouped up to
// maxDepth scope components, with a humanized total and memory usage. Handy
// to print once after model creation.
func ParamsSummary(ctx *context.Context, maxDepth int) string {
	var sb strings.Builder
	sb.WriteString("Trainable parameters:\n")
	for _, group := range ParamsByScope(ctx, maxDepth) {
		_, _ = fmt.Fprintf(&sb, "%12s  %s\n", humanize.Comma(int64(group.NumParams)), group.Scope)
	}
	_, _ = fmt.Fprintf(&sb, "Total: %s parameters (%s)\n",
		humanize.Comma(int64(NumTrainableParams(ctx))),
		humanize.IBytes(uint64(ctx.Memory())))
	return sb.String()
}
