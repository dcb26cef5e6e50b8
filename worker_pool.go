// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package doccrawl

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a fixed number of long-lived worker loops.
// The first loop to return an error cancels the pool's context, which the
// remaining loops are expected to observe.
type WorkerPool struct {
	maxWorkers int
	group      *errgroup.Group
	ctx        context.Context
}

// NewWorkerPool creates a pool of maxWorkers workers bound to ctx
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	group, gctx := errgroup.WithContext(ctx)
	return &WorkerPool{
		maxWorkers: maxWorkers,
		group:      group,
		ctx:        gctx,
	}
}

// Context is cancelled when the parent is, or as soon as any worker fails
func (wp *WorkerPool) Context() context.Context {
	return wp.ctx
}

// Start launches the workers. Each one runs loop until it returns.
func (wp *WorkerPool) Start(loop func(ctx context.Context, id int) error) {
	for i := 0; i < wp.maxWorkers; i++ {
		id := i
		wp.group.Go(func() error {
			return loop(wp.ctx, id)
		})
	}
}

// Wait blocks until every worker has returned and reports the first error
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}
