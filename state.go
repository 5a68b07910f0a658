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

import (
	"time"

	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/utils"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/watch"
)

// state is the matching state machine: one monotonic buffer per key,
// the commit watermark, and the feedback sender. The key set is closed
// at construction; iteration always follows construction order.
type state[K comparable, T Timestamped] struct {
	keys    []K
	buffers map[K]*buffer[T]

	commitTS  time.Duration
	committed bool

	bufSize    int
	windowSize time.Duration

	feedbackTx *watch.Sender[Feedback[K]]
}

func newState[K comparable, T Timestamped](keys []K, config Config, feedbackTx *watch.Sender[Feedback[K]]) *state[K, T] {
	buffers := make(map[K]*buffer[T], len(keys))
	for _, key := range keys {
		buffers[key] = newBuffer[T](config.BufSize)
	}

	st := &state[K, T]{
		keys:       keys,
		buffers:    buffers,
		bufSize:    config.BufSize,
		windowSize: config.WindowSize,
		feedbackTx: feedbackTx,
	}
	if config.StartTime != nil {
		st.commitTS = *config.StartTime
		st.committed = true
	}
	return st
}

// infTimestamp is the maximum of per-buffer front timestamps, skipping
// empty buffers. It is the earliest timestamp the slowest key has
// produced so far. Undefined only when every buffer is empty.
func (s *state[K, T]) infTimestamp() (time.Duration, bool) {
	var res time.Duration
	var found bool
	for _, key := range s.keys {
		front, ok := s.buffers[key].front()
		if !ok {
			continue
		}
		if ts := front.Timestamp(); !found || ts > res {
			res = ts
			found = true
		}
	}
	return res, found
}

// supTimestamp is the minimum of per-buffer back timestamps, skipping
// empty buffers. It is the latest timestamp every key has reached.
func (s *state[K, T]) supTimestamp() (time.Duration, bool) {
	var res time.Duration
	var found bool
	for _, key := range s.keys {
		back, ok := s.buffers[key].back()
		if !ok {
			continue
		}
		if ts := back.Timestamp(); !found || ts < res {
			res = ts
			found = true
		}
	}
	return res, found
}

// minTimestamp is the globally smallest front timestamp.
func (s *state[K, T]) minTimestamp() (time.Duration, bool) {
	var res time.Duration
	var found bool
	for _, key := range s.keys {
		front, ok := s.buffers[key].front()
		if !ok {
			continue
		}
		if ts := front.Timestamp(); !found || ts < res {
			res = ts
			found = true
		}
	}
	return res, found
}

// isReady reports whether every buffer holds at least two messages.
func (s *state[K, T]) isReady() bool {
	for _, key := range s.keys {
		if s.buffers[key].len() < 2 {
			return false
		}
	}
	return true
}

// isFull reports whether every buffer has reached the soft capacity.
func (s *state[K, T]) isFull() bool {
	for _, key := range s.keys {
		if s.buffers[key].len() < s.bufSize {
			return false
		}
	}
	return true
}

// isEmpty reports whether every buffer is empty. The drain loop
// terminates on this condition.
func (s *state[K, T]) isEmpty() bool {
	for _, key := range s.keys {
		if !s.buffers[key].isEmpty() {
			return false
		}
	}
	return true
}

// push inserts a message into the buffer identified by key. It reports
// false for messages at or below the commit watermark, unknown keys,
// and messages that violate the buffer's monotonicity.
func (s *state[K, T]) push(key K, item T) bool {
	if s.committed && item.Timestamp() <= s.commitTS {
		return false
	}

	buf, ok := s.buffers[key]
	if !ok {
		return false
	}

	return buf.tryPush(item)
}

// tryMatch attempts to form one cross-key group.
//
// The window is [inf-windowSize, inf+windowSize] around the slowest
// key's front. Unless force is set, matching requires inf+windowSize
// <= sup so that the slowest key has enough lookahead for no better
// candidate to appear later; force skips that requirement once the
// input has terminated. Per key, messages below the window start (or
// at or below the commit watermark, whichever cuts deeper) are
// discarded, then the candidate closest to inf within the window is
// taken. If any key cannot contribute, no group is formed; messages
// already discarded or taken from other keys stay removed and the
// watermark is left untouched.
func (s *state[K, T]) tryMatch(force bool) (*Group[K, T], bool) {
	inf, ok := s.infTimestamp()
	if !ok {
		return nil, false
	}
	sup, ok := s.supTimestamp()
	if !ok {
		return nil, false
	}
	if !force && utils.SatAdd(inf, s.windowSize) > sup {
		return nil, false
	}

	windowStart := utils.SatSub(inf, s.windowSize)
	windowEnd := utils.SatAdd(inf, s.windowSize)

	dropUpper := windowStart
	dropInclusive := false
	if s.committed && s.commitTS > windowStart {
		dropUpper = s.commitTS
		dropInclusive = true
	}
	inDropRange := func(ts time.Duration) bool {
		if dropInclusive {
			return ts <= dropUpper
		}
		return ts < dropUpper
	}

	group := newGroup[K, T](len(s.keys))
	for _, key := range s.keys {
		buf := s.buffers[key]

		// Find the first candidate inside the window.
		var candidate T
		var found bool
		for {
			front, ok := buf.front()
			if !ok {
				break
			}
			ts := front.Timestamp()
			if inDropRange(ts) {
				buf.popFront()
				continue
			}
			if ts > windowEnd {
				break
			}
			candidate, _ = buf.popFront()
			found = true
			break
		}
		if !found {
			return nil, false
		}

		// Advance to the candidate closest to inf. Ties advance, so a
		// symmetric pair around inf resolves to the later message.
		currDiff := utils.AbsDiff(inf, candidate.Timestamp())
		for {
			front, ok := buf.front()
			if !ok {
				break
			}
			ts := front.Timestamp()
			if ts > windowEnd {
				break
			}
			newDiff := utils.AbsDiff(inf, ts)
			if newDiff > currDiff {
				break
			}
			candidate, _ = buf.popFront()
			currDiff = newDiff
		}

		group.put(key, candidate)
	}

	s.commitTS = group.MinTimestamp()
	s.committed = true
	return group, true
}

// dropMin pops the front message with the globally smallest timestamp
// from every buffer holding it. It reports whether anything was
// dropped. Used to force progress when the matcher stalls.
func (s *state[K, T]) dropMin() bool {
	minTS, ok := s.minTimestamp()
	if !ok {
		return false
	}

	for _, key := range s.keys {
		buf := s.buffers[key]
		if front, ok := buf.front(); ok && front.Timestamp() == minTS {
			buf.popFront()
		}
	}
	return true
}

// updateFeedback sends a fresh snapshot on the watch channel. The
// sender is retired once the receiver is gone.
func (s *state[K, T]) updateFeedback() {
	if s.feedbackTx == nil {
		return
	}

	accepted := make([]K, 0, len(s.keys))
	for _, key := range s.keys {
		if s.buffers[key].len() < s.bufSize {
			accepted = append(accepted, key)
		}
	}

	fb := Feedback[K]{AcceptedKeys: accepted}
	if s.committed {
		ts := s.commitTS
		fb.CommitTimestamp = &ts
	}

	if !s.feedbackTx.Send(fb) {
		s.feedbackTx = nil
	}
}
