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

// syncd replays recorded sensor journals through the synchronizer and
// writes the matched frames to an output journal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	synchronizer "github.com/NEWSLabNTU/multi-stream-synchronizer"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/journal"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: syncd --config <path>")
		os.Exit(2)
	}

	log := logger.GetLogger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}
	if cfg.Verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Errorf("syncd: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg fileConfig) error {
	log := logger.GetLogger()

	sources := make([]synchronizer.Source[string, journal.Message], 0, len(cfg.Inputs))
	for _, p := range cfg.Inputs {
		r, err := journal.Open(p)
		if err != nil {
			return err
		}
		records, err := r.ReadAll()
		_ = r.Close()
		if err != nil {
			return err
		}
		log.Infof("loaded %d frames from %s", len(records), p)
		sources = append(sources, journal.NewReplay(records))
	}

	stream, feedbackRx, err := synchronizer.Sync[string, journal.Message](
		journal.Merge(sources...),
		cfg.Keys,
		cfg.syncConfig(),
	)
	if err != nil {
		return err
	}

	w, err := journal.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer w.Close()

	var frameID int64
	for {
		group, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		rec := &journal.Record{FrameID: frameID}
		for _, item := range group.Items() {
			rec.Entries = append(rec.Entries, &journal.Entry{
				Key:         item.Key,
				TimestampNs: item.Message.TS.Nanoseconds(),
				Payload:     item.Message.Payload,
			})
		}
		if err := w.Append(rec); err != nil {
			return err
		}

		if fb := feedbackRx.Load(); fb.CommitTimestamp != nil {
			log.Debugf("frame %d committed at %s, accepting %v", frameID, *fb.CommitTimestamp, fb.AcceptedKeys)
		}
		frameID++
	}

	if err := w.Sync(); err != nil {
		return err
	}
	log.Infof("synchronized %d frames into %s", frameID, cfg.Output)
	return nil
}
