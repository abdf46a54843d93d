// Package summarizer builds stream reports: container metadata, per-frame
// section statistics and optional decode benchmark results.
package summarizer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/stream"
)

// Summary contains everything known about one movie.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`

	File   FileInfo   `json:"file"`
	Stream StreamInfo `json:"stream"`
	Frames FrameStats `json:"frames"`

	// Decode is nil unless a benchmark ran.
	Decode *DecodeInfo `json:"decode,omitempty"`
}

// FileInfo identifies the movie file.
type FileInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// StreamInfo is the container-level description.
type StreamInfo struct {
	Variant    string          `json:"variant"`
	FourCC     string          `json:"fourcc"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	FrameRate  stream.Rational `json:"frame_rate"`
	Duration   float64         `json:"duration"` // seconds
	FrameCount int             `json:"frame_count"`
	Timescale  uint32          `json:"timescale"`
}

// FrameStats aggregates the encoded frames.
type FrameStats struct {
	MinSize     int64          `json:"min_size"`
	MaxSize     int64          `json:"max_size"`
	TotalSize   int64          `json:"total_size"`
	Formats     []string       `json:"formats"`              // texture formats of the first frame, plane order
	Compressors map[string]int `json:"compressors"`          // top-level compressor name -> frames
	Unreadable  []int          `json:"unreadable,omitempty"` // frames whose headers could not be parsed
}

// AvgSize returns the mean encoded frame size.
func (f FrameStats) AvgSize(frames int) int64 {
	if frames <= 0 {
		return 0
	}
	return f.TotalSize / int64(frames)
}

// DecodeInfo holds benchmark results.
type DecodeInfo struct {
	Frames    int           `json:"frames"`
	Failures  int           `json:"failures"`
	Discarded int           `json:"discarded"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// FPS returns decoded frames per second.
func (d DecodeInfo) FPS() float64 {
	if d.Elapsed <= 0 {
		return 0
	}
	return float64(d.Frames) / d.Elapsed.Seconds()
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// AnalyzeFrames reads the section header of every frame of desc from r.
// Frames that cannot be read or parsed are listed in Unreadable; only an
// I/O error on the reader itself is returned.
func AnalyzeFrames(r io.ReaderAt, desc *stream.Descriptor) (FrameStats, error) {
	stats := FrameStats{Compressors: make(map[string]int)}
	buf := make([]byte, desc.MaxFrameSize())

	for i, f := range desc.Frames {
		if i == 0 || f.Size < stats.MinSize {
			stats.MinSize = f.Size
		}
		stats.MaxSize = max(stats.MaxSize, f.Size)
		stats.TotalSize += f.Size

		payload := buf[:f.Size]
		if n, err := r.ReadAt(payload, f.Offset); n < len(payload) {
			if err == nil || errors.Is(err, io.EOF) {
				stats.Unreadable = append(stats.Unreadable, i)
				continue
			}
			return stats, fmt.Errorf("read frame %d: %w", i, err)
		}

		formats, compressors, err := hap.Probe(payload)
		if err != nil {
			stats.Unreadable = append(stats.Unreadable, i)
			continue
		}
		if stats.Formats == nil {
			for _, tf := range formats {
				stats.Formats = append(stats.Formats, tf.String())
			}
		}
		for _, c := range compressors {
			stats.Compressors[c]++
		}
	}
	return stats, nil
}

// CompressorNames returns the compressor names in stable order.
func (f FrameStats) CompressorNames() []string {
	names := make([]string, 0, len(f.Compressors))
	for n := range f.Compressors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithFile sets file information.
func (b *Builder) WithFile(path string, size int64) *Builder {
	b.summary.File = FileInfo{Path: path, Size: size}
	return b
}

// WithStream copies the container description from desc.
func (b *Builder) WithStream(desc *stream.Descriptor) *Builder {
	b.summary.Stream = StreamInfo{
		Variant:    desc.Variant.String(),
		FourCC:     desc.Variant.FourCC(),
		Width:      desc.Width,
		Height:     desc.Height,
		FrameRate:  desc.FrameRate,
		Duration:   desc.DurationSeconds(),
		FrameCount: desc.FrameCount(),
		Timescale:  desc.Timescale,
	}
	if b.summary.File.Size == 0 {
		b.summary.File.Size = desc.FileSize
	}
	return b
}

// WithFrames sets frame statistics.
func (b *Builder) WithFrames(stats FrameStats) *Builder {
	b.summary.Frames = stats
	return b
}

// WithDecode sets benchmark results.
func (b *Builder) WithDecode(info DecodeInfo) *Builder {
	b.summary.Decode = &info
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
