// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package walk

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Each calls fn for every index in [0, n) using at most workers goroutines.
// If workers <= 0 it defaults to runtime.NumCPU(). fn must write its
// result into a slot owned by its index so the merged output does not
// depend on scheduling. The first error cancels the remaining work; a
// cancelled ctx stops dispatch and is returned.
func Each(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
