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
	"encoding/binary"
	"io"
)

// ErrorWriter batches binary writes and keeps the first error so the
// caller checks once at the end.
type ErrorWriter struct {
	w   io.Writer
	err error
}

func NewErrorWriter(w io.Writer) *ErrorWriter {
	return &ErrorWriter{
		w:   w,
		err: nil,
	}
}

func (w *ErrorWriter) Write(order binary.ByteOrder, data any) {
	if w.err != nil {
		return
	}
	w.err = binary.Write(w.w, order, data)
}

func (w *ErrorWriter) Error() error {
	return w.err
}

type ErrorReader struct {
	r   io.Reader
	err error
}

func NewErrorReader(r io.Reader) *ErrorReader {
	return &ErrorReader{
		r:   r,
		err: nil,
	}
}

func (r *ErrorReader) Read(order binary.ByteOrder, data any) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, order, data)
}

// ReadFull fills data from the underlying reader.
func (r *ErrorReader) ReadFull(data []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.r, data)
}

func (r *ErrorReader) Error() error {
	return r.err
}
