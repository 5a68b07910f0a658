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
	"errors"
	"io"
	"os"
	"path"
	"testing"
	"time"

	synchronizer "github.com/NEWSLabNTU/multi-stream-synchronizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func entry(key string, ts time.Duration, payload string) *Entry {
	return &Entry{
		Key:         key,
		TimestampNs: ts.Nanoseconds(),
		Payload:     []byte(payload),
	}
}

func TestJournalRoundTrip(t *testing.T) {
	file := path.Join(t.TempDir(), "frames.journal")

	w, err := Create(file)
	require.NoError(t, err)

	records := []*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("lidar0", ms(1001), "pcd-0"),
			entry("camera0", ms(998), "img-0"),
		}},
		{FrameID: 1, Entries: []*Entry{
			entry("lidar0", ms(1999), "pcd-1"),
			entry("camera0", ms(2003), "img-1"),
		}},
	}
	for _, rec := range records {
		require.NoError(t, w.Append(rec))
	}
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	r, err := Open(file)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].FrameID, got[0].FrameID)
	assert.Equal(t, records[1].FrameID, got[1].FrameID)
	require.Len(t, got[0].Entries, 2)
	assert.Equal(t, "lidar0", got[0].Entries[0].Key)
	assert.Equal(t, ms(1001).Nanoseconds(), got[0].Entries[0].TimestampNs)
	assert.Equal(t, []byte("pcd-0"), got[0].Entries[0].Payload)
}

func TestJournalBadMagic(t *testing.T) {
	file := path.Join(t.TempDir(), "bogus.journal")
	require.NoError(t, os.WriteFile(file, []byte("definitely not a journal"), 0644))

	_, err := Open(file)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestJournalEmptyFileBadMagic(t *testing.T) {
	file := path.Join(t.TempDir(), "empty.journal")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := Open(file)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestJournalIndex(t *testing.T) {
	records := []*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("lidar0", ms(1001), ""),
			entry("camera0", ms(998), ""),
		}},
	}

	index := BuildIndex(records)
	assert.True(t, index.Contains("lidar0", ms(1001)))
	assert.True(t, index.Contains("camera0", ms(998)))
	assert.False(t, index.Contains("lidar0", ms(2000)))
}

func TestReplayOrder(t *testing.T) {
	records := []*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("lidar0", ms(1001), ""),
			entry("camera0", ms(998), ""),
		}},
		{FrameID: 1, Entries: []*Entry{
			entry("lidar0", ms(1999), ""),
			entry("camera0", ms(2003), ""),
		}},
	}

	replay := NewReplay(records)

	var tss []time.Duration
	for {
		_, msg, err := replay.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		tss = append(tss, msg.TS)
	}
	assert.Equal(t, []time.Duration{ms(998), ms(1001), ms(1999), ms(2003)}, tss)
}

func TestMergeInterleavesByTimestamp(t *testing.T) {
	lhs := NewReplay([]*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("lidar0", ms(100), ""),
			entry("lidar0", ms(300), ""),
		}},
	})
	rhs := NewReplay([]*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("camera0", ms(200), ""),
			entry("camera0", ms(400), ""),
		}},
	})

	merged := Merge(lhs, rhs)

	var tss []time.Duration
	for {
		_, msg, err := merged.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		tss = append(tss, msg.TS)
	}
	assert.Equal(t, []time.Duration{ms(100), ms(200), ms(300), ms(400)}, tss)
}

// A recorded journal replayed through the synchronizer reproduces the
// original frames.
func TestReplayThroughSynchronizer(t *testing.T) {
	records := []*Record{
		{FrameID: 0, Entries: []*Entry{
			entry("lidar0", ms(1001), ""),
			entry("camera0", ms(998), ""),
		}},
		{FrameID: 1, Entries: []*Entry{
			entry("lidar0", ms(1999), ""),
			entry("camera0", ms(2003), ""),
		}},
		{FrameID: 2, Entries: []*Entry{
			entry("lidar0", ms(3000), ""),
			entry("camera0", ms(3002), ""),
		}},
	}

	stream, _, err := synchronizer.Sync[string, Message](
		NewReplay(records),
		[]string{"lidar0", "camera0"},
		synchronizer.Config{WindowSize: 500 * time.Millisecond, BufSize: 16},
	)
	require.NoError(t, err)

	var groups []*synchronizer.Group[string, Message]
	for {
		group, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		groups = append(groups, group)
	}

	require.Len(t, groups, 3)
	for i, rec := range records {
		for _, want := range rec.Entries {
			got, ok := groups[i].Get(want.Key)
			require.True(t, ok)
			assert.Equal(t, want.TimestampNs, got.TS.Nanoseconds())
		}
	}
}
