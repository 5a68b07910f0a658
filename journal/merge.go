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

package journal

import (
	"container/heap"
	"context"
	"errors"
	"io"

	synchronizer "github.com/NEWSLabNTU/multi-stream-synchronizer"
)

// MergeSource combines several timestamp-ordered sources into one
// stream ordered by timestamp. Ties keep the lower source index first.
type MergeSource struct {
	sources []synchronizer.Source[string, Message]
	h       *mergeHeap
	primed  bool
	err     error
}

func Merge(sources ...synchronizer.Source[string, Message]) *MergeSource {
	return &MergeSource{
		sources: sources,
		h:       &mergeHeap{},
	}
}

func (m *MergeSource) Next(ctx context.Context) (string, Message, error) {
	if m.err != nil {
		return "", Message{}, m.err
	}

	if !m.primed {
		heap.Init(m.h)
		for i := range m.sources {
			if err := m.pull(ctx, i); err != nil {
				return "", Message{}, err
			}
		}
		m.primed = true
	}

	if m.h.Len() == 0 {
		return "", Message{}, io.EOF
	}

	e := heap.Pop(m.h).(element)
	if err := m.pull(ctx, e.si); err != nil {
		// Hand the popped element out first; the error surfaces on
		// the following call.
		m.err = err
	}
	return e.key, e.msg, nil
}

// pull fetches one element from source i onto the heap. A drained
// source is simply left out.
func (m *MergeSource) pull(ctx context.Context, i int) error {
	key, msg, err := m.sources[i].Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	heap.Push(m.h, element{
		key: key,
		msg: msg,
		si:  i,
	})
	return nil
}

type element struct {
	key string
	msg Message
	si  int
}

type mergeHeap []element

func (h *mergeHeap) Len() int {
	return len(*h)
}

func (h *mergeHeap) Less(i, j int) bool {
	lhs, rhs := (*h)[i], (*h)[j]
	if lhs.msg.TS != rhs.msg.TS {
		return lhs.msg.TS < rhs.msg.TS
	}
	return lhs.si < rhs.si
}

func (h *mergeHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
}

func (h *mergeHeap) Push(x any) {
	*h = append(*h, x.(element))
}

func (h *mergeHeap) Pop() any {
	curr := *h
	n := len(curr)
	e := curr[n-1]
	*h = curr[0 : n-1]
	return e
}
