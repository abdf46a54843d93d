package hap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// gradient returns an image with enough variation that chunks differ.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 64, A: uint8(255 - x)})
		}
	}
	return img
}

func encodeTexture(t *testing.T, variant stream.Variant, w, h int) *texture.Texture {
	t.Helper()
	tex, err := texture.Encode(gradient(w, h), variant)
	require.NoError(t, err)
	return tex
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	variants := []stream.Variant{
		stream.VariantHap,
		stream.VariantHapAlpha,
		stream.VariantHapQ,
		stream.VariantHapQAlpha,
		stream.VariantHapAlphaOnly,
	}
	encoders := []Encoder{
		{Compressor: CompressorNone},
		{Compressor: CompressorSnappy},
		{Compressor: CompressorSnappy, Chunks: 4},
		{Compressor: CompressorNone, Chunks: 3},
		{Compressor: CompressorSnappy, Chunks: 5, OmitChunkOffsets: true},
	}

	for _, v := range variants {
		for _, enc := range encoders {
			name := fmt.Sprintf("%v/%v/chunks=%d/offsets=%v", v, enc.Compressor, enc.Chunks, !enc.OmitChunkOffsets)
			t.Run(name, func(t *testing.T) {
				src := encodeTexture(t, v, 64, 36)
				frame, err := enc.Encode(src)
				require.NoError(t, err)

				dst := &texture.Texture{}
				dec := NewDecoder(0)
				err = dec.Decode(context.Background(), frame, stream.CodecFlags{Variant: v}, 64, 36, dst)
				require.NoError(t, err)
				assert.Equal(t, src, dst)
			})
		}
	}
}

func TestDecode_ChunkedMatchesSimple(t *testing.T) {
	src := encodeTexture(t, stream.VariantHapQ, 128, 128)
	simple, err := (&Encoder{Compressor: CompressorSnappy}).Encode(src)
	require.NoError(t, err)
	chunked, err := (&Encoder{Compressor: CompressorSnappy, Chunks: 8}).Encode(src)
	require.NoError(t, err)
	require.NotEqual(t, simple, chunked)

	flags := stream.CodecFlags{Variant: stream.VariantHapQ}
	dec := NewDecoder(src.Size())
	a, b := &texture.Texture{}, &texture.Texture{}
	require.NoError(t, dec.Decode(context.Background(), simple, flags, 128, 128, a))
	require.NoError(t, dec.Decode(context.Background(), chunked, flags, 128, 128, b))
	assert.Equal(t, a, b)
}

func TestDecode_HapQAlphaCombinesPlanes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 100})
		}
	}
	src, err := texture.Encode(img, stream.VariantHapQAlpha)
	require.NoError(t, err)
	frame, err := (&Encoder{Compressor: CompressorSnappy}).Encode(src)
	require.NoError(t, err)

	formats, compressors, err := Probe(frame)
	require.NoError(t, err)
	assert.Equal(t, []stream.TextureFormat{stream.FormatYCoCgDXT5, stream.FormatBC4}, formats)
	assert.Len(t, compressors, 2)

	dst := &texture.Texture{}
	require.NoError(t, NewDecoder(0).Decode(context.Background(), frame, stream.CodecFlags{Variant: stream.VariantHapQAlpha}, 8, 8, dst))
	c, err := dst.Sample(3, 3)
	require.NoError(t, err)
	assert.Greater(t, c.G, float32(0.9))
	assert.InDelta(t, 100.0/255, c.A, 0.01)
}

func TestDecode_Errors(t *testing.T) {
	src := encodeTexture(t, stream.VariantHap, 16, 16)
	frame, err := (&Encoder{Compressor: CompressorSnappy}).Encode(src)
	require.NoError(t, err)
	hapFlags := stream.CodecFlags{Variant: stream.VariantHap}

	badCompressor := append([]byte(nil), frame...)
	badCompressor[3] = 0x9B

	badChunkTable, err := (&Encoder{Chunks: 2}).Encode(src)
	require.NoError(t, err)
	// The first byte of the compressor table is at header(4) + instr header(4) + table header(4).
	badChunkTable[12] = 0x0E

	tests := []struct {
		name    string
		payload []byte
		flags   stream.CodecFlags
		w, h    int
		want    error
	}{
		{"empty", nil, hapFlags, 16, 16, ErrCorrupt},
		{"truncated", frame[:len(frame)-3], hapFlags, 16, 16, ErrCorrupt},
		{"trailing bytes", append(append([]byte(nil), frame...), 0, 0), hapFlags, 16, 16, ErrCorrupt},
		{"wrong variant", frame, stream.CodecFlags{Variant: stream.VariantHapAlpha}, 16, 16, ErrFormatMismatch},
		{"wrong size", frame, hapFlags, 32, 16, ErrSizeMismatch},
		{"zero width", frame, hapFlags, 0, 16, ErrDimensions},
		{"unknown variant", frame, stream.CodecFlags{}, 16, 16, ErrUnsupportedFormat},
		{"unknown compressor", badCompressor, hapFlags, 16, 16, ErrUnsupportedCompressor},
		{"unknown chunk compressor", badChunkTable, hapFlags, 16, 16, ErrUnsupportedCompressor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := &texture.Texture{}
			err := NewDecoder(0).Decode(context.Background(), tt.payload, tt.flags, tt.w, tt.h, dst)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_FailureLeavesDestinationUntouched(t *testing.T) {
	good := encodeTexture(t, stream.VariantHap, 16, 16)
	frame, err := (&Encoder{Compressor: CompressorSnappy, Chunks: 2}).Encode(good)
	require.NoError(t, err)

	dec := NewDecoder(0)
	dst := &texture.Texture{}
	require.NoError(t, dec.Decode(context.Background(), frame, stream.CodecFlags{Variant: stream.VariantHap}, 16, 16, dst))
	before := dst.Clone()

	corrupt := append([]byte(nil), frame...)
	corrupt = corrupt[:len(corrupt)-1]
	corrupt[0]-- // keep the outer length consistent so the chunk table is what fails
	err = dec.Decode(context.Background(), corrupt, stream.CodecFlags{Variant: stream.VariantHap}, 16, 16, dst)
	require.Error(t, err)
	assert.Equal(t, before, dst)

	// The decoder stays usable.
	require.NoError(t, dec.Decode(context.Background(), frame, stream.CodecFlags{Variant: stream.VariantHap}, 16, 16, dst))
	assert.Equal(t, good, dst)
}

func TestDecode_CanceledContext(t *testing.T) {
	src := encodeTexture(t, stream.VariantHap, 16, 16)
	frame, err := (&Encoder{}).Encode(src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewDecoder(0).Decode(ctx, frame, stream.CodecFlags{Variant: stream.VariantHap}, 16, 16, &texture.Texture{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSection_ExtendedHeader(t *testing.T) {
	b := appendSection(nil, 0xAB, nil)
	require.Len(t, b, 8)

	s, n, err := readSection(b)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, byte(0xAB), s.typ)
	assert.Empty(t, s.body)

	_, _, err = readSection(b[:6])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSnappyFallsBackToUncompressed(t *testing.T) {
	// Random-looking block data that snappy cannot shrink is stored raw.
	tex := texture.New(stream.VariantHap, 4, 4)
	copy(tex.Planes[0], []byte{0x13, 0x9A, 0x71, 0x05, 0xEE, 0x42, 0xB8, 0x6D})
	frame, err := (&Encoder{Compressor: CompressorSnappy}).Encode(tex)
	require.NoError(t, err)

	_, compressors, err := Probe(frame)
	require.NoError(t, err)
	assert.Equal(t, []string{"none"}, compressors)
}

func TestParseCompressor(t *testing.T) {
	c, err := ParseCompressor("snappy")
	require.NoError(t, err)
	assert.Equal(t, CompressorSnappy, c)

	_, err = ParseCompressor("lz4")
	assert.ErrorIs(t, err, ErrUnsupportedCompressor)
}

func TestDecodeError(t *testing.T) {
	err := fmt.Errorf("scheduler: %w", &DecodeError{Index: 7, Err: ErrCorrupt})

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 7, de.Index)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Contains(t, err.Error(), "frame 7")
}

func TestChunkBounds(t *testing.T) {
	assert.Equal(t, []int{0, 32, 64}, chunkBounds(64, 2))
	assert.Equal(t, []int{0, 8}, chunkBounds(8, 4))
	b := chunkBounds(1000, 3)
	assert.Equal(t, 0, b[0])
	assert.Equal(t, 1000, b[len(b)-1])
	for i := 1; i < len(b)-1; i++ {
		assert.Zero(t, b[i]%16)
	}
}
