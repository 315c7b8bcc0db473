package store

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/worldsmith/internal/ir"
)

// compressBuffer exports b as its JSON document and compresses it.
func compressBuffer(b *ir.CallBuffer) ([]byte, error) {
	doc, err := b.MarshalDocument()
	if err != nil {
		return nil, fmt.Errorf("marshal buffer: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("compress buffer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(doc, nil), nil
}

// decompressBuffer reverses compressBuffer and verifies the buffer digest.
func decompressBuffer(data []byte) (*ir.CallBuffer, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("decompress buffer: %w", err)
	}
	defer dec.Close()
	doc, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress buffer: %w", err)
	}
	return ir.UnmarshalDocument(doc)
}

func marshalIndices(indices []uint32) (string, error) {
	if indices == nil {
		indices = []uint32{}
	}
	data, err := json.Marshal(indices)
	if err != nil {
		return "", fmt.Errorf("marshal indices: %w", err)
	}
	return string(data), nil
}

func unmarshalIndices(s string) ([]uint32, error) {
	var out []uint32
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unmarshal indices: %w", err)
	}
	return out, nil
}
