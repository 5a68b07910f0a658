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

// Package journal persists emitted frames as an append-only file of
// compressed records and replays them as a synchronizer input.
package journal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/bufferpool"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/filter"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/logger"
	putils "github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/utils"
	"github.com/NEWSLabNTU/multi-stream-synchronizer/utils"
)

var ErrBadMagic = errors.New("not a journal file")

var _magic = putils.Magic("msync.journal")

const _fileMode = 0644

// Writer appends frames to a journal file. Each record is frugal
// encoded, s2 compressed, and length prefixed.
type Writer struct {
	f *os.File
}

func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, _fileMode)
	if err != nil {
		return nil, err
	}

	ew := utils.NewErrorWriter(f)
	ew.Write(binary.LittleEndian, _magic)
	if err := ew.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Writer{f: f}, nil
}

func (w *Writer) Append(rec *Record) error {
	data, err := putils.TMarshal(rec)
	if err != nil {
		return err
	}

	buf := bufferpool.Pool.Get()
	defer bufferpool.Pool.Put(buf)

	if err := putils.Compress(bytes.NewReader(data), buf); err != nil {
		return err
	}

	ew := utils.NewErrorWriter(w.f)
	ew.Write(binary.LittleEndian, uint32(buf.Len()))
	ew.Write(binary.LittleEndian, buf.Bytes())
	return ew.Error()
}

func (w *Writer) Sync() error {
	return w.f.Sync()
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// Reader replays a journal file sequentially.
type Reader struct {
	f      *os.File
	logger logger.Logger
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var magic uint64
	er := utils.NewErrorReader(f)
	er.Read(binary.LittleEndian, &magic)
	if err := er.Error(); err != nil {
		_ = f.Close()
		return nil, ErrBadMagic
	}
	if magic != _magic {
		_ = f.Close()
		return nil, ErrBadMagic
	}

	return &Reader{
		f:      f,
		logger: logger.GetLogger(),
	}, nil
}

// Next returns the next record, or io.EOF at the end of the file.
func (r *Reader) Next() (*Record, error) {
	var length uint32
	if err := binary.Read(r.f, binary.LittleEndian, &length); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	compressed := make([]byte, length)
	er := utils.NewErrorReader(r.f)
	er.ReadFull(compressed)
	if err := er.Error(); err != nil {
		return nil, err
	}

	buf := bufferpool.Pool.Get()
	defer bufferpool.Pool.Put(buf)

	if err := putils.Decompress(bytes.NewReader(compressed), buf); err != nil {
		return nil, err
	}

	rec := &Record{}
	if err := putils.TUnmarshal(buf.Bytes(), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadAll drains the remaining records.
func (r *Reader) ReadAll() ([]*Record, error) {
	defer putils.Elapsed(time.Now(), r.logger, "journal read")

	var records []*Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func (r *Reader) Close() error {
	return r.f.Close()
}

// Fingerprint identifies one sample within a journal.
func Fingerprint(key string, ts time.Duration) string {
	return key + "@" + strconv.FormatInt(ts.Nanoseconds(), 10)
}

// Index answers approximate membership queries over a set of records.
// A negative answer is exact; a positive one may rarely be wrong.
type Index struct {
	filter *filter.Filter
}

func BuildIndex(records []*Record) *Index {
	var fingerprints []string
	for _, rec := range records {
		for _, entry := range rec.Entries {
			fingerprints = append(fingerprints, Fingerprint(entry.Key, time.Duration(entry.TimestampNs)))
		}
	}
	return &Index{filter: filter.Build(fingerprints)}
}

func (i *Index) Contains(key string, ts time.Duration) bool {
	return i.filter.Contains(Fingerprint(key, ts))
}
