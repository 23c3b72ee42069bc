package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// UnitID identifies a text unit within one build of the corpus.
// IDs are dense ordinals assigned in segmentation order: the unit at
// position i carries ID i, so the range [0, N) is always contiguous.
// IDs are stable for the lifetime of a build and carry no identity
// across rebuilds.
type UnitID uint32

// TextUnit is a single retrievable segment of the source document.
// It is immutable after construction; Words is derived from Text.
type TextUnit struct {
	Text  string
	Words int
}

// NewTextUnit creates a TextUnit with its word count derived from the text.
func NewTextUnit(text string) TextUnit {
	return TextUnit{Text: text, Words: len(strings.Fields(text))}
}

// Fingerprint computes a deterministic 64-bit digest of a payload using
// BLAKE2b hashing. The build fingerprint pairs the index and corpus
// artifacts of one build, and per-artifact digests detect corruption at
// load time.
func Fingerprint(data []byte) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
