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

package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterAddContains(t *testing.T) {
	f := New(100, 0.01)

	f.Add("lidar0@1000000")
	f.Add("camera0@1000300")

	assert.True(t, f.Contains("lidar0@1000000"))
	assert.True(t, f.Contains("camera0@1000300"))
	assert.False(t, f.Contains("lidar0@2000000"))
}

func TestFilterBuild(t *testing.T) {
	fingerprints := make([]string, 0, 256)
	for i := range 256 {
		fingerprints = append(fingerprints, fmt.Sprintf("lidar0@%d", i*1000))
	}

	f := Build(fingerprints)
	for _, fp := range fingerprints {
		assert.True(t, f.Contains(fp))
	}
}

func TestFilterBuildEmpty(t *testing.T) {
	f := Build(nil)
	assert.False(t, f.Contains("lidar0@0"))
}

func TestFilterFalsePositiveRate(t *testing.T) {
	n := 1000
	f := New(n, 0.01)
	for i := range n {
		f.Add(fmt.Sprintf("seen@%d", i))
	}

	var hits int
	for i := range n {
		if f.Contains(fmt.Sprintf("unseen@%d", i)) {
			hits++
		}
	}
	// Allow generous slack over the configured 1% rate.
	assert.Less(t, hits, n/10)
}
