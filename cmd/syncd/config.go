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

package main

import (
	"errors"
	"time"

	"github.com/BurntSushi/toml"
	synchronizer "github.com/NEWSLabNTU/multi-stream-synchronizer"
)

// duration accepts human-readable strings like "500ms".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// datetime accepts ISO-8601 local datetimes like "2024-01-02T15:04:05".
type datetime struct {
	time.Time
}

const _datetimeLayout = "2006-01-02T15:04:05"

func (d *datetime) UnmarshalText(text []byte) error {
	v, err := time.ParseInLocation(_datetimeLayout, string(text), time.Local)
	if err != nil {
		return err
	}
	d.Time = v
	return nil
}

type fileConfig struct {
	WindowSize duration  `toml:"window_size"`
	StartTime  *datetime `toml:"start_time"`
	BufSize    int       `toml:"buf_size"`
	Keys       []string  `toml:"keys"`
	Inputs     []string  `toml:"inputs"`
	Output     string    `toml:"output"`
	Verbose    bool      `toml:"verbose"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	if len(cfg.Keys) == 0 {
		return cfg, errors.New("config: keys must not be empty")
	}
	if len(cfg.Inputs) == 0 {
		return cfg, errors.New("config: at least one input journal is required")
	}
	if cfg.Output == "" {
		return cfg, errors.New("config: output journal path is required")
	}
	return cfg, nil
}

// syncConfig maps the file representation onto the core configuration.
// The start time becomes an offset from the Unix epoch, matching the
// timestamp domain of recorded messages.
func (c fileConfig) syncConfig() synchronizer.Config {
	cfg := synchronizer.Config{
		WindowSize: c.WindowSize.Duration,
		BufSize:    c.BufSize,
	}
	if c.StartTime != nil {
		ts := time.Duration(c.StartTime.UnixNano())
		cfg.StartTime = &ts
	}
	return cfg
}
