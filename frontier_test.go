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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_FIFO(t *testing.T) {
	f := NewFrontier()
	f.Push("a")
	f.Push("b")
	f.Push("a")

	ctx := context.Background()
	for _, want := range []string{"a", "b", "a"} {
		got, err := f.Pop(ctx, time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 3, f.Unfinished())
}

func TestFrontier_DrainedWhenEmptyAndDone(t *testing.T) {
	f := NewFrontier()
	assert.True(t, f.Drained())

	_, err := f.Pop(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrFrontierDrained)

	f.Push("a")
	assert.False(t, f.Drained())

	_, err = f.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	assert.False(t, f.Drained(), "popped but not done is still in flight")

	f.Done()
	assert.True(t, f.Drained())
}

func TestFrontier_IdleTimeoutWhileInFlight(t *testing.T) {
	f := NewFrontier()
	f.Push("a")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Pop(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrIdleTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestFrontier_PopWakesOnPush(t *testing.T) {
	f := NewFrontier()
	f.Push("seed")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Push("child")
		f.Done()
	}()

	got, err := f.Pop(context.Background(), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "child", got)
}

func TestFrontier_PopWakesOnLastDone(t *testing.T) {
	f := NewFrontier()
	f.Push("seed")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Done()
	}()

	start := time.Now()
	_, err = f.Pop(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, ErrFrontierDrained)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFrontier_PopHonorsContext(t *testing.T) {
	f := NewFrontier()
	f.Push("seed")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Pop(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFrontier_Close(t *testing.T) {
	f := NewFrontier()
	f.Push("a")
	f.Push("b")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	f.Close()
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 1, f.Unfinished())

	f.Push("c")
	assert.Equal(t, 0, f.Len(), "push after close is dropped")

	_, err = f.Pop(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrFrontierDrained)

	f.Done()
	assert.True(t, f.Drained())
}

func TestFrontier_Wait(t *testing.T) {
	f := NewFrontier()
	f.Push("a")
	f.Push("b")
	_, err := f.Pop(context.Background(), time.Second)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- f.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait returned with an item still in flight")
	case <-time.After(30 * time.Millisecond):
	}

	f.Done()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Done")
	}
}
