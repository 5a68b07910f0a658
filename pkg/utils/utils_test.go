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

package utils

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsDiff(t *testing.T) {
	tests := []struct {
		lhs, rhs, expected time.Duration
	}{
		{0, 0, 0},
		{100, 100, 0},
		{100, 40, 60},
		{40, 100, 60},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, AbsDiff(tt.lhs, tt.rhs))
	}
}

func TestSatAdd(t *testing.T) {
	assert.Equal(t, 300*time.Millisecond, SatAdd(100*time.Millisecond, 200*time.Millisecond))
	assert.Equal(t, time.Duration(math.MaxInt64), SatAdd(math.MaxInt64-1, 2))
}

func TestSatSub(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, SatSub(300*time.Millisecond, 200*time.Millisecond))
	assert.Equal(t, time.Duration(0), SatSub(200*time.Millisecond, 300*time.Millisecond))
	assert.Equal(t, time.Duration(0), SatSub(200*time.Millisecond, 200*time.Millisecond))
}

func TestCompressRoundTrip(t *testing.T) {
	src := strings.Repeat("timestamped payload ", 128)

	var compressed bytes.Buffer
	require.NoError(t, Compress(strings.NewReader(src), &compressed))
	assert.Less(t, compressed.Len(), len(src))

	var restored bytes.Buffer
	require.NoError(t, Decompress(&compressed, &restored))
	assert.Equal(t, src, restored.String())
}

func TestMagicStable(t *testing.T) {
	assert.Equal(t, Magic("msync.journal"), Magic("msync.journal"))
	assert.NotEqual(t, Magic("msync.journal"), Magic("msync.journa1"))
}
