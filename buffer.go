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

package synchronizer

import "time"

// buffer is an ordered queue of messages for a single key. Timestamps
// are strictly increasing front to back; lastTS is the greatest
// timestamp ever admitted and persists across pops, so a popped tail
// still forbids re-inserting an equal or earlier message.
type buffer[T Timestamped] struct {
	items  []T
	lastTS time.Duration
	seen   bool
}

func newBuffer[T Timestamped](capacity int) *buffer[T] {
	return &buffer[T]{
		items: make([]T, 0, capacity),
	}
}

func (b *buffer[T]) len() int {
	return len(b.items)
}

func (b *buffer[T]) isEmpty() bool {
	return len(b.items) == 0
}

func (b *buffer[T]) front() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	return b.items[0], true
}

func (b *buffer[T]) back() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	return b.items[len(b.items)-1], true
}

func (b *buffer[T]) popFront() (T, bool) {
	var zero T
	if len(b.items) == 0 {
		return zero, false
	}
	item := b.items[0]
	b.items[0] = zero
	b.items = b.items[1:]
	return item, true
}

// tryPush admits item only if its timestamp is strictly greater than
// lastTS. Capacity is advisory and not enforced here.
func (b *buffer[T]) tryPush(item T) bool {
	timestamp := item.Timestamp()

	if b.seen && timestamp <= b.lastTS {
		return false
	}

	b.lastTS = timestamp
	b.seen = true
	b.items = append(b.items, item)
	return true
}

// dropBefore removes the longest prefix of items with timestamps below
// ts and returns the removed count. Items with timestamp equal to ts
// are retained.
func (b *buffer[T]) dropBefore(ts time.Duration) int {
	var count int
	for {
		front, ok := b.front()
		if !ok || front.Timestamp() >= ts {
			break
		}
		b.popFront()
		count++
	}
	return count
}
