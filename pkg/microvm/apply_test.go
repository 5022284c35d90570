package microvm

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaform/firecracker-sdk/internal/transport"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi/schema"
)

// fakeRoundTripper answers every request with a canned status, optionally
// failing requests whose path matches failOn.
type fakeRoundTripper struct {
	requests []*http.Request
	failOn   map[string]bool
}

func (f *fakeRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if f.failOn[req.URL.Path] {
		body := io.NopCloser(strings.NewReader(`{"fault_message":"boom"}`))
		return &http.Response{StatusCode: http.StatusBadRequest, Body: body, Header: make(http.Header)}, nil
	}
	return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader("")), Header: make(http.Header)}, nil
}

func newTestSpecWithClient(rt *fakeRoundTripper) *Spec {
	s := New()
	s.state = StateStarted
	s.client = transport.NewWithRoundTripper(rt)
	return s
}

func TestApplySendsDrivesBeforeSingletons(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Add(fcapi.KindDrive, "rootfs", schema.Bag{"drive_id": "rootfs", "is_root_device": true}))
	require.NoError(t, s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"}))

	require.NoError(t, s.Apply(t.Context()))

	require.Len(t, rt.requests, 2)
	assert.Equal(t, "/drives/rootfs", rt.requests[0].URL.Path)
	assert.Equal(t, "/boot-source", rt.requests[1].URL.Path)
}

func TestApplyIsIdempotentOnSecondPass(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"}))
	require.NoError(t, s.Apply(t.Context()))
	require.Len(t, rt.requests, 1)

	require.NoError(t, s.Apply(t.Context()))
	assert.Len(t, rt.requests, 1, "already-applied resources must not be re-sent")
}

func TestApplyAccumulatesErrorsWithoutAborting(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{"/boot-source": true}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Add(fcapi.KindDrive, "rootfs", schema.Bag{"drive_id": "rootfs", "is_root_device": true}))
	require.NoError(t, s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"}))
	require.NoError(t, s.Configure(fcapi.KindMetrics, schema.Bag{"metrics_path": "/tmp/metrics"}))

	require.NoError(t, s.Apply(t.Context()))

	d, ok := s.Drive("rootfs")
	require.True(t, ok)
	_ = d

	errs := s.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "boot_source", errs[0].ResourceKey)

	combined := s.CombinedError()
	require.Error(t, combined)
	assert.Contains(t, combined.Error(), "boot_source")
}

func TestApplyBalloonSplitsStatsAndAmountPostBoot(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(64), "deflate_on_oom": true}))
	require.NoError(t, s.Apply(t.Context()))
	require.Len(t, rt.requests, 1)

	s.state = StateRunning
	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(128), "stats_polling_interval_s": int64(2)}))
	require.NoError(t, s.Apply(t.Context()))

	require.Len(t, rt.requests, 3)
	assert.Equal(t, "/balloon/statistics", rt.requests[1].URL.Path)
	assert.Equal(t, "/balloon", rt.requests[2].URL.Path)
}

func TestApplyBalloonOnlySendsFieldsPresentInBag(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(64), "deflate_on_oom": true}))
	require.NoError(t, s.Apply(t.Context()))
	require.Len(t, rt.requests, 1)

	s.state = StateRunning
	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"stats_polling_interval_s": int64(2)}))
	require.NoError(t, s.Apply(t.Context()))

	require.Len(t, rt.requests, 2, "amount_mib was carried over, not resupplied, and must not be re-sent")
	assert.Equal(t, "/balloon/statistics", rt.requests[1].URL.Path)
}

func TestApplyBalloonSendsExplicitZeroAmount(t *testing.T) {
	rt := &fakeRoundTripper{failOn: map[string]bool{}}
	s := newTestSpecWithClient(rt)

	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(64), "deflate_on_oom": true}))
	require.NoError(t, s.Apply(t.Context()))
	require.Len(t, rt.requests, 1)

	s.state = StateRunning
	require.NoError(t, s.Configure(fcapi.KindBalloon, schema.Bag{"amount_mib": int64(0)}))
	require.NoError(t, s.Apply(t.Context()))

	require.Len(t, rt.requests, 2, "an explicit amount_mib=0 update must still be sent")
	assert.Equal(t, "/balloon", rt.requests[1].URL.Path)
}

func TestApplyIsNoopWithoutClient(t *testing.T) {
	s := New()
	require.NoError(t, s.Configure(fcapi.KindBootSource, schema.Bag{"kernel_image_path": "/boot/vmlinux"}))
	require.NoError(t, s.Apply(t.Context()))
}
