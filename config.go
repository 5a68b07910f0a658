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
	"errors"
	"time"
)

var (
	ErrBufSize    = errors.New("buf size must be at least 2")
	ErrWindowSize = errors.New("window size must be positive")
	ErrNoKeys     = errors.New("key set must not be empty")
)

type Config struct {
	// WindowSize bounds the timestamp spread within an emitted group.
	WindowSize time.Duration

	// StartTime seeds the commit watermark; messages at or before it
	// are rejected from the beginning.
	StartTime *time.Duration

	// BufSize is the per-key soft capacity that triggers saturation
	// logic. It does not evict on push.
	BufSize int
}

func (c Config) validate() error {
	if c.BufSize < 2 {
		return ErrBufSize
	}
	if c.WindowSize <= 0 {
		return ErrWindowSize
	}
	return nil
}
