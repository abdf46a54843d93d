// Package player is the playback façade: it opens a HAP movie, keeps the
// playback state and drives time resolution, decode scheduling and frame
// publication once per explicit update call.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/user/happlay/pkg/adapters/logger"
	"github.com/user/happlay/pkg/adapters/nullsink"
	"github.com/user/happlay/pkg/adapters/osfilesystem"
	"github.com/user/happlay/pkg/container"
	"github.com/user/happlay/pkg/framecache"
	"github.com/user/happlay/pkg/frameclock"
	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
	"github.com/user/happlay/pkg/texture"
)

// PathMode selects how Open interprets its path.
type PathMode = ports.PathMode

const (
	StreamingAssets = ports.StreamingAssets
	LocalFileSystem = ports.LocalFileSystem
)

// Option configures a Player.
type Option func(*Player)

// WithFileSystem sets the file system used to resolve and open movies.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(p *Player) { p.fs = fs }
}

// WithLogger sets the logger. The player logs under its own component name.
func WithLogger(l ports.Logger) Option {
	return func(p *Player) { p.baseLogger = l }
}

// WithDebugSink sets where stream metadata and decoded frames are dumped.
func WithDebugSink(s ports.DebugSink) Option {
	return func(p *Player) { p.sink = s }
}

// WithLoop sets the initial loop flag.
func WithLoop(loop bool) Option {
	return func(p *Player) { p.loop = loop }
}

// WithSpeed sets the initial playback speed.
func WithSpeed(speed float64) Option {
	return func(p *Player) { p.speed = speed }
}

// WithDecodeWorkers limits the goroutines used to decompress the chunks of
// one frame. n <= 0 means GOMAXPROCS.
func WithDecodeWorkers(n int) Option {
	return func(p *Player) { p.decodeWorkers = n }
}

// WithDecodeTimeout bounds how long UpdateNow waits for a frame.
// Zero waits as long as the caller's context allows.
func WithDecodeTimeout(d time.Duration) Option {
	return func(p *Player) { p.decodeTimeout = d }
}

// Player plays one HAP movie. It is not safe for concurrent use; only the
// decode itself runs on another goroutine.
type Player struct {
	fs            ports.FileSystem
	baseLogger    ports.Logger
	logger        ports.Logger
	sink          ports.DebugSink
	session       string
	decodeWorkers int
	decodeTimeout time.Duration

	// Open stream
	desc     *stream.Descriptor
	file     ports.File
	cache    *framecache.Cache
	clock    frameclock.Clock
	path     string
	openErr  error
	lastSave int

	// Playback state
	time    float64
	speed   float64
	loop    bool
	playing bool
}

// New creates a player with nothing open.
func New(opts ...Option) *Player {
	p := &Player{
		speed:    1,
		session:  uuid.NewString(),
		lastSave: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = osfilesystem.New()
	}
	if p.baseLogger == nil {
		p.baseLogger = logger.NewNoop()
	}
	if p.sink == nil {
		p.sink = nullsink.New()
	}
	p.logger = p.baseLogger.WithComponent("player " + p.session[:8])
	return p
}

// Session returns the unique id of this player instance.
func (p *Player) Session() string {
	return p.session
}

// Open resolves path according to mode, parses the movie and starts the
// decode worker. Any stream that was open is closed first. On failure the
// player stays invalid and the error is returned: a *ResourceError when the
// file cannot be read, a *container.ParseError when it is not a usable HAP
// movie.
func (p *Player) Open(path string, mode PathMode) error {
	if err := p.Close(); err != nil {
		p.logger.Warn("Failed to close %s: %v", p.path, err)
	}

	p.path = path
	resolved, err := p.fs.Resolve(path, mode)
	if err != nil {
		return p.failOpen(&ResourceError{Path: path, Err: err})
	}
	p.path = resolved

	f, err := p.fs.Open(resolved)
	if err != nil {
		return p.failOpen(&ResourceError{Path: resolved, Err: err})
	}

	desc, err := container.Parse(f)
	if err != nil {
		f.Close()
		return p.failOpen(err)
	}
	p.logger.WithComponent("container").Debug("Parsed %s: %d frames, timescale %d, largest frame %d bytes",
		desc.Variant.FourCC(), desc.FrameCount(), desc.Timescale, desc.MaxFrameSize())

	p.desc = desc
	p.file = f
	p.clock = frameclock.New(desc, p.loop)
	p.cache = framecache.New(newFileDecoder(f, desc, p.decodeWorkers), p.logger.WithComponent("framecache"))
	p.openErr = nil
	p.lastSave = -1

	p.logger.Info("Opened %s: %s %dx%d, %d frames at %s fps", resolved, desc.Variant, desc.Width, desc.Height, desc.FrameCount(), desc.FrameRate)

	if p.sink.Enabled() {
		if data, err := json.MarshalIndent(desc, "", "  "); err == nil {
			if err := p.sink.SaveStreamJSON(data); err != nil {
				p.logger.Warn("Failed to save debug output: %v", err)
			}
		}
	}
	return nil
}

func (p *Player) failOpen(err error) error {
	p.openErr = err
	p.logger.Error("Failed to open %s: %v", p.path, err)
	return err
}

// Close stops decoding and closes the movie file. The playback state is
// kept for the next Open.
func (p *Player) Close() error {
	if p.cache != nil {
		p.cache.Close()
		p.cache = nil
	}
	var err error
	if p.file != nil {
		err = p.file.Close()
		p.file = nil
		p.logger.Debug("Closed %s", p.path)
	}
	p.desc = nil
	p.clock = frameclock.Clock{}
	p.playing = false
	return err
}

// SetTime moves the playback cursor. The frame is resolved on the next update.
func (p *Player) SetTime(t float64) {
	p.time = t
}

// SetSpeed sets the playback rate. Zero freezes time advancement.
func (p *Player) SetSpeed(speed float64) {
	p.speed = speed
}

// SetLoop selects wrapping (true) or clamping (false) past the end.
func (p *Player) SetLoop(loop bool) {
	p.loop = loop
	p.clock.Loop = loop
}

// Play resumes time advancement in Update.
func (p *Player) Play() {
	p.playing = true
}

// Pause stops time advancement in Update.
func (p *Player) Pause() {
	p.playing = false
}

// Update advances time by dt*speed when playing, requests the frame at the
// current time and publishes a finished decode if there is one. It never
// blocks and never reports decode errors; see DecodeFailed.
func (p *Player) Update(dt float64) {
	if !p.IsValid() {
		return
	}
	if p.playing {
		p.advance(dt)
	}
	p.cache.Request(p.clock.Resolve(p.time))
	p.cache.Poll()
	p.dumpFrame()
}

// UpdateNow requests the frame at the current time and waits until it is
// decoded. A failed decode is not an error here; the previous frame stays
// current and DecodeFailed reports it. Errors come only from ctx, the
// decode timeout, or a player with nothing open.
func (p *Player) UpdateNow(ctx context.Context) error {
	if !p.IsValid() {
		return ErrNotOpen
	}
	if p.decodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.decodeTimeout)
		defer cancel()
	}

	index := p.clock.Resolve(p.time)
	p.logger.Debug("Requesting frame %d at %.4f s", index, p.time)
	p.cache.Request(index)
	err := p.cache.Wait(ctx)
	p.dumpFrame()

	var de *hap.DecodeError
	if errors.As(err, &de) {
		return nil
	}
	return err
}

func (p *Player) advance(dt float64) {
	p.time += dt * p.speed
	period := p.clock.Period()
	if period <= 0 {
		return
	}
	if p.loop {
		p.time = math.Mod(p.time, period)
		if p.time < 0 {
			p.time += period
		}
		return
	}
	p.time = math.Max(0, math.Min(p.time, period))
}

func (p *Player) dumpFrame() {
	if !p.sink.Enabled() {
		return
	}
	cur := p.cache.Current()
	if cur == nil || cur.Index == p.lastSave {
		return
	}
	p.lastSave = cur.Index
	img, err := cur.Texture.ToNRGBA()
	if err != nil {
		p.logger.Debug("Skipping debug dump of frame %d: %v", cur.Index, err)
		return
	}
	if err := p.sink.SaveDecodedFrame(cur.Index, img); err != nil {
		p.logger.Warn("Failed to save debug output: %v", err)
	}
}

// IsValid reports whether a stream is open and its dimensions are known.
func (p *Player) IsValid() bool {
	return p.desc != nil && p.desc.Width > 0 && p.desc.Height > 0
}

// Descriptor returns the parsed stream, or nil.
func (p *Player) Descriptor() *stream.Descriptor {
	return p.desc
}

// FrameCount returns the number of frames, or 0 when nothing is open.
func (p *Player) FrameCount() int {
	return p.desc.FrameCount()
}

// FrameWidth returns the frame width in pixels.
func (p *Player) FrameWidth() int {
	if p.desc == nil {
		return 0
	}
	return p.desc.Width
}

// FrameHeight returns the frame height in pixels.
func (p *Player) FrameHeight() int {
	if p.desc == nil {
		return 0
	}
	return p.desc.Height
}

// StreamDuration returns the stream duration in seconds.
func (p *Player) StreamDuration() float64 {
	return p.desc.DurationSeconds()
}

// FrameRate returns the exact frame rate, or the zero Rational.
func (p *Player) FrameRate() stream.Rational {
	if p.desc == nil {
		return stream.Rational{}
	}
	return p.desc.FrameRate
}

// Variant returns the HAP flavour of the open stream.
func (p *Player) Variant() stream.Variant {
	if p.desc == nil {
		return stream.VariantUnknown
	}
	return p.desc.Variant
}

// Texture returns the current decoded frame, or nil before the first one.
// It stays valid until the next Update or UpdateNow.
func (p *Player) Texture() *texture.Texture {
	if p.cache == nil {
		return nil
	}
	if cur := p.cache.Current(); cur != nil {
		return cur.Texture
	}
	return nil
}

// CurrentFrame returns the index of the current decoded frame, or -1.
func (p *Player) CurrentFrame() int {
	if p.cache == nil {
		return -1
	}
	if cur := p.cache.Current(); cur != nil {
		return cur.Index
	}
	return -1
}

// ResolvedFilePath returns the path of the last Open attempt after resolution.
func (p *Player) ResolvedFilePath() string {
	return p.path
}

// DecodeFailed reports whether the most recently requested frame failed to decode.
func (p *Player) DecodeFailed() bool {
	return p.cache != nil && p.cache.State() == framecache.Failed
}

// LastError returns the decode error of the latest frame, or the error of a
// failed Open.
func (p *Player) LastError() error {
	if p.cache != nil {
		return p.cache.Err()
	}
	return p.openErr
}

// Stats returns the decode counters of the open stream.
func (p *Player) Stats() framecache.Stats {
	if p.cache == nil {
		return framecache.Stats{}
	}
	return p.cache.Stats()
}

// Time returns the playback cursor in seconds.
func (p *Player) Time() float64 { return p.time }

// Speed returns the playback rate.
func (p *Player) Speed() float64 { return p.speed }

// Loop reports whether playback wraps at the end.
func (p *Player) Loop() bool { return p.loop }

// IsPlaying reports whether Update advances time.
func (p *Player) IsPlaying() bool { return p.playing }

// String describes the open stream for logs.
func (p *Player) String() string {
	if !p.IsValid() {
		return fmt.Sprintf("player %s (closed)", p.session[:8])
	}
	return fmt.Sprintf("player %s %s %dx%d %s fps", p.session[:8], p.desc.Variant, p.desc.Width, p.desc.Height, p.desc.FrameRate)
}
