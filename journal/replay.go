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
	"context"
	"io"
	"slices"
	"time"

	synchronizer "github.com/NEWSLabNTU/multi-stream-synchronizer"
)

// Message is one replayed sample.
type Message struct {
	TS      time.Duration
	Payload []byte
}

func (m Message) Timestamp() time.Duration {
	return m.TS
}

// Replay re-interleaves the samples of recorded frames in timestamp
// order and serves them as a synchronizer input.
type Replay struct {
	items []synchronizer.Item[string, Message]
	pos   int
}

func NewReplay(records []*Record) *Replay {
	var items []synchronizer.Item[string, Message]
	for _, rec := range records {
		for _, entry := range rec.Entries {
			items = append(items, synchronizer.Item[string, Message]{
				Key: entry.Key,
				Message: Message{
					TS:      time.Duration(entry.TimestampNs),
					Payload: entry.Payload,
				},
			})
		}
	}
	slices.SortStableFunc(items, func(a, b synchronizer.Item[string, Message]) int {
		switch {
		case a.Message.TS < b.Message.TS:
			return -1
		case a.Message.TS > b.Message.TS:
			return 1
		default:
			return 0
		}
	})
	return &Replay{items: items}
}

func (r *Replay) Next(ctx context.Context) (string, Message, error) {
	if err := ctx.Err(); err != nil {
		return "", Message{}, err
	}
	if r.pos >= len(r.items) {
		return "", Message{}, io.EOF
	}
	item := r.items[r.pos]
	r.pos++
	return item.Key, item.Message, nil
}
