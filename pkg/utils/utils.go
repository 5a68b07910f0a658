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
	"crypto/sha1"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/NEWSLabNTU/multi-stream-synchronizer/pkg/logger"
	"github.com/apache/thrift/lib/go/thrift"
	"github.com/cloudwego/frugal"
	"github.com/klauspost/compress/s2"
)

func Elapsed(now time.Time, logger logger.Logger, msg string) {
	logger.Infof("%s elapsed: %s", msg, time.Since(now))
}

func TMarshal(data thrift.TStruct) ([]byte, error) {
	buf := make([]byte, frugal.EncodedSize(data))
	if _, err := frugal.EncodeObject(buf, nil, data); err != nil {
		return nil, err
	}
	return buf, nil
}

func TUnmarshal(data []byte, v thrift.TStruct) error {
	if _, err := frugal.DecodeObject(data, v); err != nil {
		return err
	}
	return nil
}

func Compress(src io.Reader, dst io.Writer) error {
	enc := s2.NewWriter(dst)
	_, err := io.Copy(enc, src)
	if err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func Decompress(src io.Reader, dst io.Writer) error {
	dec := s2.NewReader(src)
	_, err := io.Copy(dst, dec)
	return err
}

func Magic(input string) uint64 {
	hash := sha1.Sum([]byte(input))
	return binary.BigEndian.Uint64(hash[:8])
}

// AbsDiff is the absolute distance between two timestamps.
func AbsDiff(lhs, rhs time.Duration) time.Duration {
	if lhs >= rhs {
		return lhs - rhs
	}
	return rhs - lhs
}

// SatAdd adds two non-negative durations, clamping at the maximum
// representable duration instead of overflowing.
func SatAdd(lhs, rhs time.Duration) time.Duration {
	if lhs > math.MaxInt64-rhs {
		return math.MaxInt64
	}
	return lhs + rhs
}

// SatSub subtracts rhs from lhs, clamping at zero.
func SatSub(lhs, rhs time.Duration) time.Duration {
	if lhs <= rhs {
		return 0
	}
	return lhs - rhs
}
