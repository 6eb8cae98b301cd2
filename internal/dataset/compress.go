package dataset

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks keys holding zstd-compressed text.
const CompressedSuffix = ".zst"

func compressed(key string) bool {
	return strings.HasSuffix(key, CompressedSuffix)
}

type decoder struct {
	*zstd.Decoder
}

func (d decoder) Close() error {
	d.Decoder.Close()
	return nil
}

func newDecoder(r io.Reader) (decoder, error) {
	dec, err := zstd.NewReader(r,
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxWindow(32*1024*1024),
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		return decoder{}, err
	}
	return decoder{dec}, nil
}

// Compress returns data zstd-compressed at the default level.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}
