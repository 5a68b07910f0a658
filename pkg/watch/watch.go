// Copyright 2025 NEWSLab Members
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

// Package watch provides a single-slot channel that retains only the
// most recent value. Sends never block; a slow receiver observes the
// latest value and skips the intermediates.
package watch

import (
	"context"
	"sync"
)

type channel[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	notifyC chan struct{}
	closed  bool
}

// New creates a connected Sender and Receiver holding the initial value.
func New[T any](initial T) (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{
		value:   initial,
		notifyC: make(chan struct{}),
	}
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

type Sender[T any] struct {
	ch *channel[T]
}

// Send overwrites the slot with value. It reports false once the
// receiver has been closed; the value is discarded in that case.
func (s *Sender[T]) Send(value T) bool {
	ch := s.ch

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.closed {
		return false
	}

	ch.value = value
	ch.version++
	close(ch.notifyC)
	ch.notifyC = make(chan struct{})
	return true
}

type Receiver[T any] struct {
	ch   *channel[T]
	seen uint64
}

// Load returns the current value and marks it as seen.
func (r *Receiver[T]) Load() T {
	ch := r.ch

	ch.mu.Lock()
	defer ch.mu.Unlock()

	r.seen = ch.version
	return ch.value
}

// HasChanged reports whether a value newer than the last Load is present.
func (r *Receiver[T]) HasChanged() bool {
	ch := r.ch

	ch.mu.Lock()
	defer ch.mu.Unlock()

	return ch.version != r.seen
}

// Changed blocks until a value newer than the last Load arrives or the
// context is done.
func (r *Receiver[T]) Changed(ctx context.Context) error {
	for {
		ch := r.ch

		ch.mu.Lock()
		if ch.version != r.seen {
			ch.mu.Unlock()
			return nil
		}
		notifyC := ch.notifyC
		ch.mu.Unlock()

		select {
		case <-notifyC:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close detaches the receiver. Subsequent sends report false so the
// producer can retire the channel.
func (r *Receiver[T]) Close() {
	ch := r.ch

	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.closed = true
}
