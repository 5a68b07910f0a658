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
	"math"

	"github.com/spaolacci/murmur3"
)

const _defaultP = 0.01

// Filter is a bloom filter over message fingerprints. It may report a
// fingerprint it has never seen (false positive) but never misses one
// it has.
type Filter struct {
	bitset []bool
	k      uint32
	m      int
}

// New creates a Filter sized for n expected fingerprints with false
// positive rate p.
func New(n int, p float64) *Filter {
	// m = -(n * ln(p)) / (ln(2)^2)
	m := int(math.Ceil(-float64(n) * math.Log(p) / math.Pow(math.Log(2), 2)))
	// k = (m/n) * ln(2)
	k := uint32(math.Round((float64(m) / float64(n)) * math.Log(2)))
	if k == 0 {
		k = 1
	}

	return &Filter{
		bitset: make([]bool, m),
		k:      k,
		m:      m,
	}
}

// Build creates a Filter with the default false positive rate and adds
// every fingerprint.
func Build(fingerprints []string) *Filter {
	n := len(fingerprints)
	if n == 0 {
		n = 1
	}
	f := New(n, _defaultP)
	for _, fp := range fingerprints {
		f.Add(fp)
	}
	return f
}

func (f *Filter) Add(fingerprint string) {
	for seed := uint32(0); seed < f.k; seed++ {
		index := int(murmur3.Sum32WithSeed([]byte(fingerprint), seed)) % f.m
		if index < 0 {
			index += f.m
		}
		f.bitset[index] = true
	}
}

func (f *Filter) Contains(fingerprint string) bool {
	for seed := uint32(0); seed < f.k; seed++ {
		index := int(murmur3.Sum32WithSeed([]byte(fingerprint), seed)) % f.m
		if index < 0 {
			index += f.m
		}
		if !f.bitset[index] {
			return false
		}
	}
	return true
}
