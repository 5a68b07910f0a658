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
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// Entry is one keyed sample within a recorded frame.
type Entry struct {
	Key         string `thrift:"key,1" frugal:"1,default,string"`
	TimestampNs int64  `thrift:"timestamp_ns,2" frugal:"2,default,i64"`
	Payload     []byte `thrift:"payload,3" frugal:"3,default,binary"`
}

func (e *Entry) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("Entry"); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("key", thrift.STRING, 1); err != nil {
		return err
	}
	if err := oprot.WriteString(e.Key); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("timestamp_ns", thrift.I64, 2); err != nil {
		return err
	}
	if err := oprot.WriteI64(e.TimestampNs); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("payload", thrift.STRING, 3); err != nil {
		return err
	}
	if err := oprot.WriteBinary(e.Payload); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(); err != nil {
		return err
	}
	return oprot.WriteStructEnd()
}

func (e *Entry) Read(iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(); err != nil {
		return err
	}
	for {
		_, fieldTypeId, fieldId, err := iprot.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fieldTypeId == thrift.STOP {
			break
		}
		switch {
		case fieldId == 1 && fieldTypeId == thrift.STRING:
			if e.Key, err = iprot.ReadString(); err != nil {
				return err
			}
		case fieldId == 2 && fieldTypeId == thrift.I64:
			if e.TimestampNs, err = iprot.ReadI64(); err != nil {
				return err
			}
		case fieldId == 3 && fieldTypeId == thrift.STRING:
			if e.Payload, err = iprot.ReadBinary(); err != nil {
				return err
			}
		default:
			if err = iprot.Skip(fieldTypeId); err != nil {
				return err
			}
		}
		if err = iprot.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd()
}

func (e *Entry) String() string {
	return fmt.Sprintf("Entry(%s@%d)", e.Key, e.TimestampNs)
}

// Record is one emitted frame: a group of entries with distinct keys.
type Record struct {
	FrameID int64    `thrift:"frame_id,1" frugal:"1,default,i64"`
	Entries []*Entry `thrift:"entries,2" frugal:"2,default,list<Entry>"`
}

func (r *Record) Write(oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin("Record"); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("frame_id", thrift.I64, 1); err != nil {
		return err
	}
	if err := oprot.WriteI64(r.FrameID); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin("entries", thrift.LIST, 2); err != nil {
		return err
	}
	if err := oprot.WriteListBegin(thrift.STRUCT, len(r.Entries)); err != nil {
		return err
	}
	for _, entry := range r.Entries {
		if err := entry.Write(oprot); err != nil {
			return err
		}
	}
	if err := oprot.WriteListEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(); err != nil {
		return err
	}
	return oprot.WriteStructEnd()
}

func (r *Record) Read(iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(); err != nil {
		return err
	}
	for {
		_, fieldTypeId, fieldId, err := iprot.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fieldTypeId == thrift.STOP {
			break
		}
		switch {
		case fieldId == 1 && fieldTypeId == thrift.I64:
			if r.FrameID, err = iprot.ReadI64(); err != nil {
				return err
			}
		case fieldId == 2 && fieldTypeId == thrift.LIST:
			_, size, err := iprot.ReadListBegin()
			if err != nil {
				return err
			}
			r.Entries = make([]*Entry, 0, size)
			for range size {
				entry := &Entry{}
				if err := entry.Read(iprot); err != nil {
					return err
				}
				r.Entries = append(r.Entries, entry)
			}
			if err = iprot.ReadListEnd(); err != nil {
				return err
			}
		default:
			if err = iprot.Skip(fieldTypeId); err != nil {
				return err
			}
		}
		if err = iprot.ReadFieldEnd(); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd()
}

func (r *Record) String() string {
	return fmt.Sprintf("Record(frame=%d, entries=%d)", r.FrameID, len(r.Entries))
}
