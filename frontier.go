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
	"sync"
	"time"
)

// Frontier is the FIFO of URLs waiting to be crawled, shared by all workers.
//
// Every pushed item stays unfinished until a worker calls Done for it. The
// frontier is drained once it is empty and nothing is unfinished: at that
// point no worker can discover more links, so idle workers may exit.
// Duplicate pushes are accepted; deduplication happens when a worker claims
// the URL against the visited set.
type Frontier struct {
	mu         sync.Mutex
	items      []string
	unfinished int
	closed     bool
	// changed is closed and replaced on every state change, waking all waiters
	changed chan struct{}
}

// NewFrontier returns an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{changed: make(chan struct{})}
}

// Push appends url. Pushes after Close are dropped.
func (f *Frontier) Push(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.items = append(f.items, url)
	f.unfinished++
	f.broadcast()
}

// Pop removes the oldest URL, waiting up to idle for one to arrive.
// It returns ErrFrontierDrained when the frontier is drained or closed, and
// ErrIdleTimeout when idle elapsed while other items were still in flight.
func (f *Frontier) Pop(ctx context.Context, idle time.Duration) (string, error) {
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return "", ErrFrontierDrained
		}
		if len(f.items) > 0 {
			url := f.items[0]
			f.items[0] = ""
			f.items = f.items[1:]
			f.mu.Unlock()
			return url, nil
		}
		if f.unfinished == 0 {
			f.mu.Unlock()
			return "", ErrFrontierDrained
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return "", ErrIdleTimeout
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Done marks one popped item as processed
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unfinished > 0 {
		f.unfinished--
	}
	f.broadcast()
}

// Len returns the number of queued URLs
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Unfinished returns the number of pushed items not yet marked Done
func (f *Frontier) Unfinished() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unfinished
}

// Drained reports whether the frontier is empty with nothing in flight
func (f *Frontier) Drained() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) == 0 && f.unfinished == 0
}

// Close stops dispatch: queued items are dropped and every Pop returns ErrFrontierDrained
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.unfinished -= len(f.items)
	f.items = nil
	f.broadcast()
}

// Wait blocks until every item popped so far has been marked Done
func (f *Frontier) Wait(ctx context.Context) error {
	for {
		f.mu.Lock()
		inFlight := f.unfinished - len(f.items)
		changed := f.changed
		f.mu.Unlock()

		if inFlight <= 0 {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Frontier) broadcast() {
	close(f.changed)
	f.changed = make(chan struct{})
}
