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
	"context"
	"errors"
	"io"
	"slices"

	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/logger"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/watch"
)

// Sync consumes a stream of keyed messages and groups up messages with
// distinct keys whose timestamps lie within a time window.
//
// It returns a pull-driven output stream and a feedback receiver. The
// output stream emits one group per configured key set; the feedback
// receiver always holds the latest pacing snapshot for upstream
// sources. Keys observed at runtime outside the configured set are
// dropped.
func Sync[K comparable, T Timestamped](input Source[K, T], keys []K, config Config) (*Stream[K, T], *watch.Receiver[Feedback[K]], error) {
	if err := config.validate(); err != nil {
		return nil, nil, err
	}

	uniq := make([]K, 0, len(keys))
	for _, key := range keys {
		if !slices.Contains(uniq, key) {
			uniq = append(uniq, key)
		}
	}
	if len(uniq) == 0 {
		return nil, nil, ErrNoKeys
	}

	initial := Feedback[K]{AcceptedKeys: slices.Clone(uniq)}
	if config.StartTime != nil {
		ts := *config.StartTime
		initial.CommitTimestamp = &ts
	}
	feedbackTx, feedbackRx := watch.New(initial)

	stream := &Stream[K, T]{
		input:  input,
		state:  newState[K, T](uniq, config, feedbackTx),
		logger: logger.GetLogger(),
	}
	return stream, feedbackRx, nil
}

// Stream is the synchronizer output. Groups are produced by Next in
// strictly non-decreasing commit order.
type Stream[K comparable, T Timestamped] struct {
	input  Source[K, T]
	state  *state[K, T]
	logger logger.Logger
	done   bool
}

// Next returns the next group. It pulls the input as needed, so a
// single call may consume many messages. Once the input ends, the
// remaining buffered groups are drained; after the drain Next returns
// io.EOF. An input error is yielded once, after which Next drains and
// ends. Context errors are returned as-is and Next may be called
// again.
func (s *Stream[K, T]) Next(ctx context.Context) (*Group[K, T], error) {
	if s.done {
		return nil, io.EOF
	}

	for s.input != nil {
		ready := s.state.isReady()

		if ready && s.state.isFull() {
			// All buffers saturated: match, or force progress.
			group, ok := s.state.tryMatch(false)
			if ok {
				s.state.updateFeedback()
				return group, nil
			}
			s.logger.Warnf("no matching found while all buffers are full, dropping one message")
			s.state.dropMin()
			s.state.updateFeedback()
			continue
		}

		key, item, err := s.input.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, io.EOF):
			s.input = nil
			continue
		default:
			// Hand the input off and yield the error once; later
			// calls drain whatever already matched.
			s.input = nil
			return nil, err
		}

		pushed := s.state.push(key, item)
		if !ready {
			// Some buffer still lacks lookahead; keep filling.
			s.state.updateFeedback()
			continue
		}
		if !pushed {
			s.state.updateFeedback()
			continue
		}

		group, ok := s.state.tryMatch(false)
		s.state.updateFeedback()
		if ok {
			return group, nil
		}
	}

	// Input exhausted: drain the remaining groups. No further input
	// can arrive, so the lookahead requirement is lifted.
	for {
		if s.state.isEmpty() {
			s.done = true
			return nil, io.EOF
		}
		if group, ok := s.state.tryMatch(true); ok {
			return group, nil
		}
		s.state.dropMin()
	}
}

// Close drops the input and terminates the stream. Buffered messages
// are discarded; subsequent Next calls return io.EOF.
func (s *Stream[K, T]) Close() error {
	s.input = nil
	s.done = true
	return nil
}
