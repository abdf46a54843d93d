// Package container indexes HAP video tracks stored in QuickTime / ISO-BMFF
// files. It reads only the box tree, never frame payloads.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/happlay/pkg/stream"
)

// sampleIsNonSync is the sample_is_non_sync_sample bit of ISO-BMFF sample flags.
const sampleIsNonSync = 0x00010000

// ParseFile opens path and parses it with Parse.
func ParseFile(path string) (*stream.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse builds a stream descriptor from the first video track of r.
func Parse(r io.ReadSeeker) (*stream.Descriptor, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	mp4File, err := decodeBoxes(r)
	if err != nil {
		return nil, err
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return nil, parseErr("read moov", ErrMalformed, "no moov box")
	}

	trak := videoTrack(moov)
	if trak == nil {
		return nil, parseErr("find track", ErrNoVideoTrack, "%d tracks, none with a vide handler", len(moov.Traks))
	}
	if trak.Tkhd == nil || trak.Mdia.Mdhd == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil, parseErr("read track", ErrMalformed, "incomplete media box")
	}

	variant, entry, err := detectVariant(trak.Mdia.Minf.Stbl.Stsd)
	if err != nil {
		return nil, err
	}
	width, height := entryDimensions(entry)
	if width == 0 || height == 0 {
		width, height = int(trak.Tkhd.Width>>16), int(trak.Tkhd.Height>>16)
	}

	timescale := trak.Mdia.Mdhd.Timescale
	if timescale == 0 {
		return nil, parseErr("read timescale", ErrInvalidStream, "zero timescale")
	}

	var frames []stream.FrameDescriptor
	if hasFragments(mp4File) {
		frames, err = fragmentedFrames(mp4File, moov, trak.Tkhd.TrackID, variant)
	} else {
		frames, err = progressiveFrames(trak.Mdia.Minf.Stbl, variant)
	}
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, parseErr("read samples", ErrNoFrames, "track has no samples")
	}

	var total int64
	for _, f := range frames {
		total += f.Duration
	}
	if total <= 0 {
		return nil, parseErr("read durations", ErrInvalidStream, "total sample duration is zero")
	}

	mediaDur := int64(trak.Mdia.Mdhd.Duration)
	if mediaDur <= 0 {
		mediaDur = total
	}

	desc := &stream.Descriptor{
		Duration:  stream.NewRational(mediaDur, int64(timescale)),
		FrameRate: stream.NewRational(int64(timescale)*int64(len(frames)), total),
		Timescale: timescale,
		Width:     width,
		Height:    height,
		Variant:   variant,
		FileSize:  size,
		Frames:    frames,
	}
	if err := desc.Validate(); err != nil {
		return nil, &ParseError{Op: "validate", Err: fmt.Errorf("%w: %w", ErrInvalidStream, err)}
	}
	return desc, nil
}

// decodeBoxes reads the box tree without loading mdat payloads.
func decodeBoxes(r io.ReadSeeker) (f *mp4.File, err error) {
	defer func() {
		if p := recover(); p != nil {
			f, err = nil, parseErr("decode boxes", ErrMalformed, "%v", p)
		}
	}()

	f, err = mp4.DecodeFile(r, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return nil, parseErr("decode boxes", ErrMalformed, "%v", err)
	}
	return f, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

// detectVariant maps the first sample entry to a HAP variant.
func detectVariant(stsd *mp4.StsdBox) (stream.Variant, mp4.Box, error) {
	if len(stsd.Children) == 0 {
		return stream.VariantUnknown, nil, parseErr("read sample description", ErrMalformed, "empty stsd")
	}
	entry := stsd.Children[0]
	variant, err := stream.ParseVariant(entry.Type())
	if err != nil {
		return stream.VariantUnknown, nil, parseErr("detect codec", ErrUnsupportedCodec, "%v", err)
	}
	return variant, entry, nil
}

// entryDimensions reads width and height from a visual sample entry.
// HAP entries are not known to mp4ff, so the fixed layout is read from the
// encoded bytes: 8 header, 8 sample entry, 16 predefined/reserved.
func entryDimensions(entry mp4.Box) (int, int) {
	if vse, ok := entry.(*mp4.VisualSampleEntryBox); ok {
		return int(vse.Width), int(vse.Height)
	}

	var buf bytes.Buffer
	if err := entry.Encode(&buf); err != nil || buf.Len() < 36 {
		return 0, 0
	}
	b := buf.Bytes()
	return int(binary.BigEndian.Uint16(b[32:34])), int(binary.BigEndian.Uint16(b[34:36]))
}

func hasFragments(f *mp4.File) bool {
	for _, seg := range f.Segments {
		if len(seg.Fragments) > 0 {
			return true
		}
	}
	return false
}

// checkSampleTable rejects tables the mp4ff lookup helpers would index or
// divide out of range on.
func checkSampleTable(stbl *mp4.StblBox) error {
	if stbl.Stsz == nil || stbl.Stsc == nil || stbl.Stts == nil {
		return parseErr("read sample table", ErrMalformed, "missing stsz, stsc or stts")
	}
	if stbl.Stco == nil && stbl.Co64 == nil {
		return parseErr("read sample table", ErrMalformed, "no stco or co64 box")
	}

	sampleCount := stbl.Stsz.SampleNumber
	if stbl.Stsz.SampleUniformSize == 0 && uint64(len(stbl.Stsz.SampleSize)) < uint64(sampleCount) {
		return parseErr("read sample sizes", ErrMalformed, "%d sizes for %d samples", len(stbl.Stsz.SampleSize), sampleCount)
	}

	stts := stbl.Stts
	if len(stts.SampleCount) != len(stts.SampleTimeDelta) {
		return parseErr("read sample times", ErrMalformed, "%d counts, %d deltas", len(stts.SampleCount), len(stts.SampleTimeDelta))
	}
	var timed uint64
	for _, n := range stts.SampleCount {
		timed += uint64(n)
	}
	if timed < uint64(sampleCount) {
		return parseErr("read sample times", ErrMalformed, "stts covers %d of %d samples", timed, sampleCount)
	}

	if sampleCount > 0 && len(stbl.Stsc.Entries) == 0 {
		return parseErr("read chunk table", ErrMalformed, "empty stsc")
	}
	var prev uint32
	for i, e := range stbl.Stsc.Entries {
		if e.FirstChunk < 1 || e.FirstChunk <= prev {
			return parseErr("read chunk table", ErrMalformed, "stsc entry %d: first chunk %d", i, e.FirstChunk)
		}
		if e.SamplesPerChunk == 0 {
			return parseErr("read chunk table", ErrMalformed, "stsc entry %d: zero samples per chunk", i)
		}
		prev = e.FirstChunk
	}
	return nil
}

// progressiveFrames builds the frame table from the sample table boxes.
func progressiveFrames(stbl *mp4.StblBox, variant stream.Variant) (frames []stream.FrameDescriptor, err error) {
	if err := checkSampleTable(stbl); err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			frames, err = nil, parseErr("read sample table", ErrMalformed, "%v", p)
		}
	}()

	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, sampleNr := range stbl.Stss.SampleNumber {
			syncSamples[sampleNr] = true
		}
	}

	sampleCount := stbl.Stsz.SampleNumber
	frames = make([]stream.FrameDescriptor, 0, sampleCount)
	for sampleNr := uint32(1); sampleNr <= sampleCount; sampleNr++ {
		offset, err := sampleOffset(stbl, sampleNr)
		if err != nil {
			return nil, err
		}
		decodeTime, dur := stbl.Stts.GetDecodeTime(sampleNr)

		frames = append(frames, stream.FrameDescriptor{
			Index:  int(sampleNr - 1),
			Offset: int64(offset),
			Size:   int64(stbl.Stsz.GetSampleSize(int(sampleNr))),
			Flags: stream.CodecFlags{
				Variant:  variant,
				Keyframe: stbl.Stss == nil || syncSamples[sampleNr],
			},
			DecodeTime: int64(decodeTime),
			Duration:   int64(dur),
		})
	}
	return frames, nil
}

// sampleOffset returns the absolute file offset of a sample.
func sampleOffset(stbl *mp4.StblBox, sampleNr uint32) (uint64, error) {
	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
	if err != nil {
		return 0, parseErr("read chunk table", ErrMalformed, "sample %d: %v", sampleNr, err)
	}

	var chunkOffset uint64
	if stbl.Stco != nil {
		if chunkNr < 1 || chunkNr > len(stbl.Stco.ChunkOffset) {
			return 0, parseErr("read chunk table", ErrMalformed, "chunk %d out of range", chunkNr)
		}
		chunkOffset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return 0, parseErr("read chunk table", ErrMalformed, "chunk %d: %v", chunkNr, err)
		}
	} else {
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return 0, parseErr("read chunk table", ErrMalformed, "chunk %d out of range", chunkNr)
		}
		chunkOffset = stbl.Co64.ChunkOffset[chunkNr-1]
	}

	offset := chunkOffset
	for s := uint32(firstSampleInChunk); s < sampleNr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}
	return offset, nil
}

// fragmentedFrames builds the frame table from the track runs of every
// fragment, resolving data offsets against the moof start or the explicit
// base data offset.
func fragmentedFrames(f *mp4.File, moov *mp4.MoovBox, trackID uint32, variant stream.Variant) ([]stream.FrameDescriptor, error) {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var frames []stream.FrameDescriptor
	for _, seg := range f.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}

				var decodeTime uint64
				if traf.Tfdt != nil {
					decodeTime = traf.Tfdt.BaseMediaDecodeTime()
				}
				base := frag.Moof.StartPos
				if traf.Tfhd.HasBaseDataOffset() {
					base = traf.Tfhd.BaseDataOffset
				}

				for _, trun := range traf.Truns {
					trun.AddSampleDefaultValues(traf.Tfhd, trex)
					offset := int64(base)
					if trun.HasDataOffset() {
						offset += int64(trun.DataOffset)
					}
					for _, s := range trun.Samples {
						frames = append(frames, stream.FrameDescriptor{
							Index:  len(frames),
							Offset: offset,
							Size:   int64(s.Size),
							Flags: stream.CodecFlags{
								Variant:  variant,
								Keyframe: s.Flags&sampleIsNonSync == 0,
							},
							DecodeTime: int64(decodeTime),
							Duration:   int64(s.Dur),
						})
						offset += int64(s.Size)
						decodeTime += uint64(s.Dur)
					}
				}
			}
		}
	}
	return frames, nil
}
