package store

import (
	"bytes"
	"compress/bzip2"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/weftbuild/weft/pkg/object"
)

// CompressionFormat names a supported compression codec.
type CompressionFormat string

const (
	CompressionBz2  CompressionFormat = "bz2"
	CompressionGz   CompressionFormat = "gz"
	CompressionLz4  CompressionFormat = "lz4"
	CompressionZstd CompressionFormat = "zstd"
)

// Compress compresses a blob's content with the given codec and returns
// the compressed bytes as a new leaf blob.
func Compress(ctx context.Context, s object.Storage, b *object.Blob, fmtc CompressionFormat) (*object.Blob, error) {
	data, err := b.Bytes(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	compressed, err := compressBytes(data, fmtc)
	if err != nil {
		return nil, err
	}
	return object.NewClient(s).NewBlob(ctx, object.Bytes(compressed))
}

// Decompress decompresses a blob's content with the given codec and
// returns the result as a new leaf blob.
func Decompress(ctx context.Context, s object.Storage, b *object.Blob, fmtc CompressionFormat) (*object.Blob, error) {
	data, err := b.Bytes(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	decompressed, err := decompressBytes(data, fmtc)
	if err != nil {
		return nil, err
	}
	return object.NewClient(s).NewBlob(ctx, object.Bytes(decompressed))
}

func compressBytes(data []byte, fmtc CompressionFormat) ([]byte, error) {
	switch fmtc {
	case CompressionGz:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLz4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			w.Close()
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionBz2:
		return nil, fmt.Errorf("compress: bz2 compression is not supported (decompression only)")
	default:
		return nil, fmt.Errorf("compress: unknown format %q", fmtc)
	}
}

func decompressBytes(data []byte, fmtc CompressionFormat) ([]byte, error) {
	switch fmtc {
	case CompressionGz:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gunzip: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip: %w", err)
		}
		return out, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("unzstd: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case CompressionLz4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("unlz4: %w", err)
		}
		return out, nil
	case CompressionBz2:
		out, err := io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("bunzip2: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decompress: unknown format %q", fmtc)
	}
}
