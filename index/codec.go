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


package index

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Shared blob layout, little-endian: magic(u32) version(u32) metric(u32)
// dim(u32) count(u32), then count*dim raw float32 values in unit id order.
// Every implementation rebuilds its search structure from the decoded
// vectors, so any backend can load a blob written by any other.
const (
	blobMagic   uint32 = 0x50564958 // "PVIX"
	blobVersion uint32 = 1
	headerSize         = 20
)

// EncodeVectors serializes vectors into the shared blob layout.
func EncodeVectors(metric Metric, dim int, vectors [][]float32) []byte {
	out := make([]byte, headerSize, headerSize+4*dim*len(vectors))
	binary.LittleEndian.PutUint32(out[0:4], blobMagic)
	binary.LittleEndian.PutUint32(out[4:8], blobVersion)
	binary.LittleEndian.PutUint32(out[8:12], uint32(metric))
	binary.LittleEndian.PutUint32(out[12:16], uint32(dim))
	binary.LittleEndian.PutUint32(out[16:20], uint32(len(vectors)))
	var scratch [4]byte
	for _, vec := range vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
			out = append(out, scratch[:]...)
		}
	}
	return out
}

// DecodeVectors parses a shared blob back into its metric, dimensionality
// and vectors. Truncated payloads, unknown magic bytes, unsupported versions
// and header/payload length disagreements all fail with ErrBadBlob; a
// partially decoded result is never returned.
func DecodeVectors(data []byte) (Metric, int, [][]float32, error) {
	if len(data) < headerSize {
		return 0, 0, nil, fmt.Errorf("%w: %d bytes, need %d byte header", ErrBadBlob, len(data), headerSize)
	}
	if m := binary.LittleEndian.Uint32(data[0:4]); m != blobMagic {
		return 0, 0, nil, fmt.Errorf("%w: bad magic 0x%08x", ErrBadBlob, m)
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != blobVersion {
		return 0, 0, nil, fmt.Errorf("%w: unsupported version %d", ErrBadBlob, v)
	}
	metric := Metric(binary.LittleEndian.Uint32(data[8:12]))
	if metric != MetricL2 && metric != MetricCosine {
		return 0, 0, nil, fmt.Errorf("%w: unknown metric %d", ErrBadBlob, uint32(metric))
	}
	dim := int(binary.LittleEndian.Uint32(data[12:16]))
	count := int(binary.LittleEndian.Uint32(data[16:20]))
	if want := headerSize + 4*dim*count; len(data) != want {
		return 0, 0, nil, fmt.Errorf("%w: %d payload bytes, want %d", ErrBadBlob, len(data)-headerSize, want-headerSize)
	}
	vectors := make([][]float32, count)
	off := headerSize
	for n := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
			off += 4
		}
		vectors[n] = vec
	}
	return metric, dim, vectors, nil
}

// ValidateBuild checks Build input for emptiness and ragged dimensionality
// and returns the common dimensionality.
func ValidateBuild(vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		return 0, ErrEmptyBuild
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: vector 0 is empty", ErrRaggedVectors)
	}
	for n, vec := range vectors {
		if len(vec) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d values, want %d", ErrRaggedVectors, n, len(vec), dim)
		}
	}
	return dim, nil
}
