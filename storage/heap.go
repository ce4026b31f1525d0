package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/colquery/bits"
	"github.com/dot5enko/colquery/compression"
)

// encodeStringHeap lays out a string leaf as
// [rows u32][offsets u32 * rows+1][data] and compresses it.
func encodeStringHeap(leaf *StringLeaf, codec compression.Codec) ([]byte, error) {
	rows := leaf.Len()

	w := bits.NewEncodeBuffer(make([]byte, 0, 4*(rows+2)+len(leaf.data)), binary.LittleEndian)
	w.EnableGrowing()

	w.PutUint32(uint32(rows))
	for _, off := range leaf.offsets {
		w.PutUint32(off)
	}
	w.Write(leaf.data)

	return codec.Compress(w.Bytes())
}

func decodeStringHeap(packed []byte, codec compression.Codec, tmpl *StringLeaf) (StringLeaf, error) {
	raw, err := codec.Decompress(packed)
	if err != nil {
		return StringLeaf{}, fmt.Errorf("unable to decompress string heap: %w", err)
	}

	r := bits.NewReader(bytes.NewReader(raw), binary.LittleEndian)

	rows, err := r.ReadU32()
	if err != nil {
		return StringLeaf{}, err
	}

	offsets := make([]uint32, rows+1)
	for i := range offsets {
		if offsets[i], err = r.ReadU32(); err != nil {
			return StringLeaf{}, fmt.Errorf("truncated string heap offsets: %w", err)
		}
	}

	dataStart := 4 * (int(rows) + 2)
	data := raw[dataStart:]
	if uint32(len(data)) != offsets[rows] {
		return StringLeaf{}, fmt.Errorf("string heap size mismatch: %d bytes, expected %d", len(data), offsets[rows])
	}

	return StringLeaf{
		offsets: offsets,
		data:    data,
		nulls:   tmpl.nulls,
		kind:    tmpl.kind,
	}, nil
}
