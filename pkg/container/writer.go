package container

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/happlay/pkg/stream"
)

// Layout selects how Write arranges samples.
type Layout int

const (
	// LayoutProgressive writes ftyp, moov with a full sample table, then mdat.
	LayoutProgressive Layout = iota
	// LayoutFragmented writes an init moov followed by moof/mdat fragments.
	LayoutFragmented
)

// ParseLayout maps "progressive" or "fragmented" to a Layout.
func ParseLayout(name string) (Layout, error) {
	switch name {
	case "progressive", "":
		return LayoutProgressive, nil
	case "fragmented":
		return LayoutFragmented, nil
	default:
		return LayoutProgressive, fmt.Errorf("unknown layout %q", name)
	}
}

func (l Layout) String() string {
	if l == LayoutFragmented {
		return "fragmented"
	}
	return "progressive"
}

// Movie is a single HAP video track to be written.
type Movie struct {
	Variant   stream.Variant
	Width     int
	Height    int
	FrameRate stream.Rational
	Frames    [][]byte // encoded HAP frames in presentation order
}

// WriteOptions controls the file layout.
type WriteOptions struct {
	Layout Layout
	// SamplesPerChunk groups progressive samples into chunks. Default 1.
	SamplesPerChunk int
	// FramesPerFragment splits fragmented output. Default: one fragment.
	FramesPerFragment int
}

var errMovie = errors.New("container: invalid movie")

// Write muxes m into w.
func Write(w io.Writer, m Movie, opts WriteOptions) error {
	if len(m.Frames) == 0 {
		return fmt.Errorf("%w: no frames", errMovie)
	}
	if !m.FrameRate.Valid() {
		return fmt.Errorf("%w: frame rate %s", errMovie, m.FrameRate)
	}
	if m.Width <= 0 || m.Height <= 0 || m.Width > math.MaxUint16 || m.Height > math.MaxUint16 {
		return fmt.Errorf("%w: dimensions %dx%d", errMovie, m.Width, m.Height)
	}
	if m.Variant.Formats() == nil {
		return fmt.Errorf("%w: variant %v", errMovie, m.Variant)
	}

	timescale, delta, err := sampleTiming(m.FrameRate)
	if err != nil {
		return err
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak
	entry := mp4.CreateVisualSampleEntryBox(m.Variant.FourCC(), uint16(m.Width), uint16(m.Height), nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	trak.Tkhd.Width = mp4.Fixed32(m.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(m.Height << 16)

	if opts.Layout == LayoutFragmented {
		return writeFragmented(w, init, m, delta, opts)
	}
	return writeProgressive(w, init, m, timescale, delta, opts)
}

// sampleTiming picks a timescale and per-sample delta that represent the
// rate exactly.
func sampleTiming(rate stream.Rational) (uint32, uint32, error) {
	r := rate.Reduce()
	ts, delta := r.Num, r.Den
	if delta == 1 {
		ts, delta = ts*1000, 1000
	}
	if ts > math.MaxUint32 || delta > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: frame rate %s does not fit a 32-bit timescale", errMovie, rate)
	}
	return uint32(ts), uint32(delta), nil
}

func writeProgressive(w io.Writer, init *mp4.InitSegment, m Movie, timescale, delta uint32, opts WriteOptions) error {
	spc := opts.SamplesPerChunk
	if spc <= 0 {
		spc = 1
	}
	n := len(m.Frames)
	chunks := (n + spc - 1) / spc
	total := uint64(n) * uint64(delta)

	trak := init.Moov.Trak
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stts == nil {
		stbl.AddChild(&mp4.SttsBox{})
	}
	if stbl.Stsc == nil {
		stbl.AddChild(&mp4.StscBox{})
	}
	if stbl.Stsz == nil {
		stbl.AddChild(&mp4.StszBox{})
	}
	if stbl.Stco == nil {
		stbl.AddChild(&mp4.StcoBox{})
	}

	stbl.Stts.SampleCount = []uint32{uint32(n)}
	stbl.Stts.SampleTimeDelta = []uint32{delta}

	stbl.Stsz.SampleNumber = uint32(n)
	stbl.Stsz.SampleSize = make([]uint32, n)
	for i, f := range m.Frames {
		stbl.Stsz.SampleSize[i] = uint32(len(f))
	}

	if err := stbl.Stsc.AddEntry(1, uint32(spc), 1); err != nil {
		return fmt.Errorf("add stsc entry: %w", err)
	}
	if last := n - (chunks-1)*spc; last != spc {
		if err := stbl.Stsc.AddEntry(uint32(chunks), uint32(last), 1); err != nil {
			return fmt.Errorf("add stsc entry: %w", err)
		}
	}
	stbl.Stco.ChunkOffset = make([]uint32, chunks)

	init.Moov.Mvhd.Timescale = timescale
	init.Moov.Mvhd.Duration = total
	trak.Tkhd.Duration = total
	trak.Mdia.Mdhd.Duration = total

	moov := mp4.NewMoovBox()
	moov.AddChild(init.Moov.Mvhd)
	moov.AddChild(trak)

	ftyp := mp4.NewFtyp("qt  ", 0x200, []string{"qt  "})

	// Offsets are fixed-width, so the moov size is known before they are filled in.
	var payload []byte
	for _, f := range m.Frames {
		payload = append(payload, f...)
	}
	mdatStart := ftyp.Size() + moov.Size() + 8
	if mdatStart+uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes of samples exceed 32-bit chunk offsets", errMovie, len(payload))
	}
	pos := mdatStart
	for i, f := range m.Frames {
		if i%spc == 0 {
			stbl.Stco.ChunkOffset[i/spc] = uint32(pos)
		}
		pos += uint64(len(f))
	}

	if err := ftyp.Encode(w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := moov.Encode(w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	mdat := &mp4.MdatBox{Data: payload}
	if err := mdat.Encode(w); err != nil {
		return fmt.Errorf("encode mdat: %w", err)
	}
	return nil
}

func writeFragmented(w io.Writer, init *mp4.InitSegment, m Movie, delta uint32, opts WriteOptions) error {
	perFrag := opts.FramesPerFragment
	if perFrag <= 0 {
		perFrag = len(m.Frames)
	}

	ftyp := mp4.NewFtyp("iso6", 0x200, []string{"iso6", "isom", "mp41"})
	if err := ftyp.Encode(w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}

	trackID := init.Moov.Trak.Tkhd.TrackID
	for start, seq := 0, uint32(1); start < len(m.Frames); start, seq = start+perFrag, seq+1 {
		frag, err := mp4.CreateFragment(seq, trackID)
		if err != nil {
			return fmt.Errorf("create fragment: %w", err)
		}
		end := min(start+perFrag, len(m.Frames))
		for i := start; i < end; i++ {
			frag.AddFullSample(mp4.FullSample{
				Sample: mp4.Sample{
					Flags: mp4.SyncSampleFlags,
					Size:  uint32(len(m.Frames[i])),
					Dur:   delta,
				},
				DecodeTime: uint64(i) * uint64(delta),
				Data:       m.Frames[i],
			})
		}
		if err := frag.Encode(w); err != nil {
			return fmt.Errorf("encode fragment: %w", err)
		}
	}
	return nil
}
