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


package store

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/passage/core"
)

// MUS serializers for the snapshot artifacts. CreatedAt is encoded as
// microseconds since the Unix epoch.

type metaMUS struct{}

// MetaMUS serializes snapshot metadata in MUS format.
var MetaMUS = metaMUS{}

func (metaMUS) Size(m Meta) (size int) {
	size = varint.Uint64.Size(m.Fingerprint)
	size += varint.Int.Size(m.Dim)
	size += ord.String.Size(m.Metric)
	size += ord.String.Size(m.Backend)
	size += varint.Int.Size(m.Count)
	size += varint.Int64.Size(m.CreatedAt.UnixMicro())
	size += varint.Uint64.Size(m.IndexSum)
	size += varint.Uint64.Size(m.CorpusSum)
	return size
}

func (metaMUS) Marshal(m Meta, bs []byte) (n int) {
	n = varint.Uint64.Marshal(m.Fingerprint, bs)
	n += varint.Int.Marshal(m.Dim, bs[n:])
	n += ord.String.Marshal(m.Metric, bs[n:])
	n += ord.String.Marshal(m.Backend, bs[n:])
	n += varint.Int.Marshal(m.Count, bs[n:])
	n += varint.Int64.Marshal(m.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Uint64.Marshal(m.IndexSum, bs[n:])
	n += varint.Uint64.Marshal(m.CorpusSum, bs[n:])
	return n
}

func (metaMUS) Unmarshal(bs []byte) (m Meta, n int, err error) {
	var size int
	m.Fingerprint, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return Meta{}, n, err
	}
	m.Dim, size, err = varint.Int.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	m.Metric, size, err = ord.String.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	m.Backend, size, err = ord.String.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	m.Count, size, err = varint.Int.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	var micros int64
	micros, size, err = varint.Int64.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	m.CreatedAt = time.UnixMicro(micros).UTC()
	m.IndexSum, size, err = varint.Uint64.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	m.CorpusSum, size, err = varint.Uint64.Unmarshal(bs[n:])
	n += size
	if err != nil {
		return Meta{}, n, err
	}
	return m, n, nil
}

type corpusMUS struct{}

// CorpusMUS serializes the corpus artifact: the ordered unit texts.
// Word counts are derived data and are recomputed on load.
var CorpusMUS = corpusMUS{}

func (corpusMUS) Size(texts []string) (size int) {
	size = varint.Int.Size(len(texts))
	for _, text := range texts {
		size += ord.String.Size(text)
	}
	return size
}

func (corpusMUS) Marshal(texts []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(texts), bs)
	for _, text := range texts {
		n += ord.String.Marshal(text, bs[n:])
	}
	return n
}

func (corpusMUS) Unmarshal(bs []byte) (texts []string, n int, err error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	// Every encoded string occupies at least one byte, so a count beyond
	// the remaining payload means the length prefix is corrupt.
	if count < 0 || count > len(bs)-n {
		return nil, n, fmt.Errorf("%w: implausible unit count %d", ErrSerializationFailed, count)
	}
	texts = make([]string, 0, count)
	for i := 0; i < count; i++ {
		var (
			text string
			size int
		)
		text, size, err = ord.String.Unmarshal(bs[n:])
		n += size
		if err != nil {
			return nil, n, err
		}
		texts = append(texts, text)
	}
	return texts, n, nil
}

// MarshalMeta serializes snapshot metadata to bytes.
func MarshalMeta(m *Meta) []byte {
	buf := make([]byte, MetaMUS.Size(*m))
	MetaMUS.Marshal(*m, buf)
	return buf
}

// UnmarshalMeta deserializes snapshot metadata from bytes.
func UnmarshalMeta(data []byte) (*Meta, error) {
	m, _, err := MetaMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &m, nil
}

// MarshalCorpus serializes a corpus to its artifact bytes.
func MarshalCorpus(c *core.Corpus) []byte {
	units := c.Units()
	texts := make([]string, len(units))
	for i, unit := range units {
		texts[i] = unit.Text
	}
	buf := make([]byte, CorpusMUS.Size(texts))
	CorpusMUS.Marshal(texts, buf)
	return buf
}

// UnmarshalCorpus deserializes a corpus from its artifact bytes,
// recomputing unit word counts.
func UnmarshalCorpus(data []byte) (*core.Corpus, error) {
	texts, _, err := CorpusMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	units := make([]core.TextUnit, len(texts))
	for i, text := range texts {
		units[i] = core.NewTextUnit(text)
	}
	return core.NewCorpus(units), nil
}
