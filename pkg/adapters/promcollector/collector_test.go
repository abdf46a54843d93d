package promcollector

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/happlay/pkg/framecache"
)

type fakeSource struct {
	session string
	path    string
	stats   framecache.Stats
	current int
	failed  bool
}

func (f *fakeSource) Session() string          { return f.session }
func (f *fakeSource) ResolvedFilePath() string { return f.path }
func (f *fakeSource) Stats() framecache.Stats  { return f.stats }
func (f *fakeSource) CurrentFrame() int        { return f.current }
func (f *fakeSource) DecodeFailed() bool       { return f.failed }

func TestCollector_Observe(t *testing.T) {
	c := New()
	c.Observe(&fakeSource{
		session: "abc",
		path:    "/assets/clip.mov",
		stats:   framecache.Stats{Requests: 10, CacheHits: 6, Decodes: 3, Failures: 1, Discarded: 2},
		current: 7,
		failed:  true,
	})

	expected := `
# HELP happlay_frame_requests_total Number of frame requests made by the update loop
# TYPE happlay_frame_requests_total counter
happlay_frame_requests_total{path="/assets/clip.mov",session="abc"} 10
# HELP happlay_frame_decodes_total Number of frames decoded and published
# TYPE happlay_frame_decodes_total counter
happlay_frame_decodes_total{path="/assets/clip.mov",session="abc"} 3
# HELP happlay_current_frame Index of the published frame, -1 before the first decode
# TYPE happlay_current_frame gauge
happlay_current_frame{path="/assets/clip.mov",session="abc"} 7
# HELP happlay_decode_failed Whether the latest requested frame failed to decode (1=yes, 0=no)
# TYPE happlay_decode_failed gauge
happlay_decode_failed{path="/assets/clip.mov",session="abc"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"happlay_frame_requests_total",
		"happlay_frame_decodes_total",
		"happlay_current_frame",
		"happlay_decode_failed",
	)
	assert.NoError(t, err)
}

func TestCollector_ObserveReplacesSnapshot(t *testing.T) {
	c := New()
	src := &fakeSource{session: "s1", path: "a.mov", stats: framecache.Stats{Requests: 1}}
	c.Observe(src)
	src.stats.Requests = 5
	c.Observe(src)

	assert.Equal(t, 1, testutil.CollectAndCount(c, "happlay_frame_requests_total"))
	expected := `
# HELP happlay_frame_requests_total Number of frame requests made by the update loop
# TYPE happlay_frame_requests_total counter
happlay_frame_requests_total{path="a.mov",session="s1"} 5
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "happlay_frame_requests_total"))
}

func TestCollector_MultiplePlayersAndForget(t *testing.T) {
	c := New()
	c.Observe(&fakeSource{session: "s1", path: "a.mov"})
	c.Observe(&fakeSource{session: "s2", path: "b.mov"})
	assert.Equal(t, 2, testutil.CollectAndCount(c, "happlay_frame_decodes_total"))

	c.Forget("s1")
	assert.Equal(t, 1, testutil.CollectAndCount(c, "happlay_frame_decodes_total"))
}

func TestCollector_WaitHistogram(t *testing.T) {
	c := New()
	c.ObserveWait(2 * time.Millisecond)
	c.ObserveWait(40 * time.Millisecond)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "happlay_frame_wait_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(2), h.GetSampleCount())
			assert.InDelta(t, 0.042, h.GetSampleSum(), 1e-9)
		}
	}
	assert.True(t, found, "histogram not gathered")
}

func TestServer_ServesMetrics(t *testing.T) {
	c := New()
	c.Observe(&fakeSource{session: "s1", path: "a.mov", stats: framecache.Stats{Decodes: 4}})
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	srv, err := Start("127.0.0.1:0", reg)
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `happlay_frame_decodes_total{path="a.mov",session="s1"} 4`)
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := Start("127.0.0.1:0", prometheus.NewRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}
