package service

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// compressZstd SVG 文本重复度高，缓存和历史记录都存压缩后的字节
func compressZstd(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var buf bytes.Buffer
	enc := zstdEncPool.Get().(*zstd.Encoder)
	enc.Reset(&buf)

	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		zstdEncPool.Put(enc)
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		zstdEncPool.Put(enc)
		return nil, fmt.Errorf("zstd encode: %w", err)
	}

	zstdEncPool.Put(enc)
	return buf.Bytes(), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	if err := dec.Reset(bytes.NewReader(data)); err != nil {
		zstdDecPool.Put(dec)
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(dec); err != nil {
		zstdDecPool.Put(dec)
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	zstdDecPool.Put(dec)
	return out.Bytes(), nil
}
