package framecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/happlay/pkg/adapters/logger"
	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/mocks"
	"github.com/user/happlay/pkg/texture"
)

// gatedDecoder blocks decodes of the given index until the gate is closed.
func gatedDecoder(index int, gate <-chan struct{}) *mocks.FrameDecoder {
	return &mocks.FrameDecoder{
		DecodeFrameFunc: func(ctx context.Context, i int, dst *texture.Texture) error {
			if i == index {
				select {
				case <-gate:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			mocks.FillIndexTexture(i, dst)
			return nil
		},
	}
}

func newCache(t *testing.T, dec *mocks.FrameDecoder) *Cache {
	t.Helper()
	c := New(dec, logger.NewNoop())
	t.Cleanup(c.Close)
	return c
}

func requestAndWait(t *testing.T, c *Cache, index int) {
	t.Helper()
	c.Request(index)
	require.NoError(t, c.Wait(context.Background()))
}

func TestCache_Idle(t *testing.T) {
	c := newCache(t, &mocks.FrameDecoder{})

	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Current())
	assert.Equal(t, -1, c.Target())
	assert.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, Idle, c.Poll())
}

func TestCache_DecodeAndPublish(t *testing.T) {
	dec := &mocks.FrameDecoder{}
	c := newCache(t, dec)

	requestAndWait(t, c, 4)

	assert.Equal(t, Ready, c.State())
	cur := c.Current()
	require.NotNil(t, cur)
	assert.Equal(t, 4, cur.Index)
	assert.Equal(t, 4, mocks.TextureIndex(cur.Texture))
	assert.Equal(t, []int{4}, dec.Calls())
}

func TestCache_RepeatedRequestIsCacheHit(t *testing.T) {
	dec := &mocks.FrameDecoder{}
	c := newCache(t, dec)

	for range 5 {
		requestAndWait(t, c, 2)
	}

	assert.Equal(t, 1, dec.CallCount())
	stats := c.Stats()
	assert.Equal(t, int64(5), stats.Requests)
	assert.Equal(t, int64(4), stats.CacheHits)
	assert.Equal(t, int64(1), stats.Decodes)
}

func TestCache_SupersededRequestsAreNotQueued(t *testing.T) {
	gate := make(chan struct{})
	dec := gatedDecoder(1, gate)
	c := newCache(t, dec)

	c.Request(1)
	c.Request(2)
	c.Request(3)
	assert.Equal(t, DecodePending, c.Poll())
	close(gate)

	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 3, c.Current().Index)
	assert.Equal(t, 3, mocks.TextureIndex(c.Current().Texture))
	assert.Equal(t, []int{1, 3}, dec.Calls())
	assert.Equal(t, int64(1), c.Stats().Discarded)
}

func TestCache_ReRequestingInFlightIndexKeepsItsToken(t *testing.T) {
	gate := make(chan struct{})
	dec := gatedDecoder(0, gate)
	c := newCache(t, dec)

	c.Request(0)
	c.Request(1)
	c.Request(0)
	close(gate)

	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 0, c.Current().Index)
	assert.Equal(t, []int{0}, dec.Calls())
	assert.Zero(t, c.Stats().Discarded)
}

func TestCache_RequestingPublishedFrameDuringDecode(t *testing.T) {
	gate := make(chan struct{})
	dec := gatedDecoder(1, gate)
	c := newCache(t, dec)

	requestAndWait(t, c, 0)

	c.Request(1)
	c.Request(0)
	assert.Equal(t, Ready, c.State())
	assert.Equal(t, 0, c.Current().Index)

	close(gate)
	require.Eventually(t, func() bool {
		c.Poll()
		return c.Stats().Discarded == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, Ready, c.State())
	assert.Equal(t, 0, c.Current().Index)
	assert.Equal(t, 0, mocks.TextureIndex(c.Current().Texture))
}

func TestCache_FailureKeepsLastGoodFrame(t *testing.T) {
	errBoom := errors.New("boom")
	dec := &mocks.FrameDecoder{
		DecodeFrameFunc: func(ctx context.Context, i int, dst *texture.Texture) error {
			if i == 5 {
				return errBoom
			}
			mocks.FillIndexTexture(i, dst)
			return nil
		},
	}
	c := newCache(t, dec)

	requestAndWait(t, c, 4)

	c.Request(5)
	err := c.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var de *hap.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 5, de.Index)

	assert.Equal(t, Failed, c.State())
	assert.Equal(t, err, c.Err())
	assert.Equal(t, 4, c.Current().Index)
	assert.Equal(t, 4, mocks.TextureIndex(c.Current().Texture))
	assert.Equal(t, int64(1), c.Stats().Failures)

	// The same target is not retried.
	c.Request(5)
	assert.Equal(t, Failed, c.Poll())
	assert.Equal(t, []int{4, 5}, dec.Calls())

	// The next frame decodes normally.
	requestAndWait(t, c, 6)
	assert.Equal(t, 6, c.Current().Index)
	assert.NoError(t, c.Err())

	// Coming back to the failed frame retries it.
	c.Request(5)
	assert.ErrorIs(t, c.Wait(context.Background()), errBoom)
	assert.Equal(t, []int{4, 5, 6, 5}, dec.Calls())
	assert.Equal(t, 6, c.Current().Index)
}

func TestCache_DecodeErrorIsNotWrappedTwice(t *testing.T) {
	dec := &mocks.FrameDecoder{
		DecodeFrameFunc: func(ctx context.Context, i int, dst *texture.Texture) error {
			return &hap.DecodeError{Index: i, Err: hap.ErrCorrupt}
		},
	}
	c := newCache(t, dec)

	c.Request(3)
	err := c.Wait(context.Background())
	assert.Equal(t, "hap: decode frame 3: hap: corrupt section", err.Error())
	assert.Nil(t, c.Current())
}

func TestCache_PollDoesNotBlock(t *testing.T) {
	gate := make(chan struct{})
	c := newCache(t, gatedDecoder(7, gate))

	c.Request(7)
	assert.Equal(t, DecodePending, c.Poll())
	assert.Nil(t, c.Current())

	close(gate)
	require.Eventually(t, func() bool { return c.Poll() == Ready }, time.Second, time.Millisecond)
	assert.Equal(t, 7, c.Current().Index)
}

func TestCache_WaitHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	c := newCache(t, gatedDecoder(1, gate))

	c.Request(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)

	close(gate)
	require.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, 1, c.Current().Index)
}

func TestCache_DoubleBuffer(t *testing.T) {
	c := newCache(t, &mocks.FrameDecoder{})

	requestAndWait(t, c, 0)
	first := c.Current()
	requestAndWait(t, c, 1)
	second := c.Current()
	requestAndWait(t, c, 2)
	third := c.Current()

	assert.NotSame(t, first, second)
	assert.Same(t, first, third)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, 1, mocks.TextureIndex(second.Texture))
}

func TestCache_Close(t *testing.T) {
	gate := make(chan struct{})
	dec := gatedDecoder(1, gate)
	c := New(dec, logger.NewNoop())

	c.Request(1)
	c.Close()
	c.Close()

	assert.ErrorIs(t, c.Wait(context.Background()), ErrClosed)
	c.Request(2)
	assert.Equal(t, []int{1}, dec.Calls())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "decode_pending", DecodePending.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(9).String())
}
