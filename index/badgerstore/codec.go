// Copyright 2025 Poiesic Systems
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


package badgerstore

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/repolens/core"
)

// record is the stored shape: one chunk plus its embedding vector.
type record struct {
	Chunk  core.Chunk
	Vector []float32
}

var vectorSer = ord.NewSliceSer[float32](raw.Float32)

// marshalRecord serializes a record to bytes.
func marshalRecord(r record) []byte {
	size := ord.String.Size(r.Chunk.Text) +
		ord.String.Size(r.Chunk.SourcePath) +
		varint.Int.Size(r.Chunk.ByteOffset) +
		varint.Int.Size(r.Chunk.SequenceIndex) +
		vectorSer.Size(r.Vector)

	bs := make([]byte, size)
	n := ord.String.Marshal(r.Chunk.Text, bs)
	n += ord.String.Marshal(r.Chunk.SourcePath, bs[n:])
	n += varint.Int.Marshal(r.Chunk.ByteOffset, bs[n:])
	n += varint.Int.Marshal(r.Chunk.SequenceIndex, bs[n:])
	vectorSer.Marshal(r.Vector, bs[n:])
	return bs
}

// unmarshalRecord deserializes a record from bytes.
func unmarshalRecord(bs []byte) (record, error) {
	var (
		r   record
		n   int
		err error
	)

	r.Chunk.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return record{}, err
	}
	bs = bs[n:]

	r.Chunk.SourcePath, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return record{}, err
	}
	bs = bs[n:]

	r.Chunk.ByteOffset, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return record{}, err
	}
	bs = bs[n:]

	r.Chunk.SequenceIndex, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return record{}, err
	}
	bs = bs[n:]

	r.Vector, _, err = vectorSer.Unmarshal(bs)
	if err != nil {
		return record{}, err
	}

	return r, nil
}
