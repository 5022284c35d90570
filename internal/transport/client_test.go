package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

func ctxTODO() context.Context { return context.Background() }

// recordingRoundTripper is a fake http.RoundTripper a test can script
// responses into, so the REST client can be exercised without a real
// Firecracker process or UNIX socket.
type recordingRoundTripper struct {
	requests  []*http.Request
	responses []*http.Response
	err       error
}

func (rt *recordingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req)
	if rt.err != nil {
		return nil, rt.err
	}
	resp := rt.responses[0]
	rt.responses = rt.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestPutSendsJSONBody(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(204, "")}}
	c := NewWithRoundTripper(rt)

	err := c.Put(ctxTODO(), "/boot-source", fcapi.BootSource{KernelImagePath: "/k"})
	require.NoError(t, err)

	require.Len(t, rt.requests, 1)
	assert.Equal(t, http.MethodPut, rt.requests[0].Method)
	assert.Equal(t, "/boot-source", rt.requests[0].URL.Path)
}

func TestPatchIsPhysicallyPut(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(204, "")}}
	c := NewWithRoundTripper(rt)

	err := c.Patch(ctxTODO(), "/machine-config", fcapi.MachineConfig{VCPUCount: 2})
	require.NoError(t, err)

	require.Len(t, rt.requests, 1)
	assert.Equal(t, http.MethodPut, rt.requests[0].Method, "patch is sent over the wire as PUT")
}

func TestDescribeDecodesBody(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(200, `{"vcpu_count": 4, "mem_size_mib": 1024}`)}}
	c := NewWithRoundTripper(rt)

	var cfg fcapi.MachineConfig
	err := c.Describe(ctxTODO(), "/machine-config", &cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.VCPUCount)
	assert.Equal(t, 1024, cfg.MemSizeMib)
}

func TestErrorResponseDecodesFaultMessage(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(400, `{"fault_message": "invalid kernel path"}`)}}
	c := NewWithRoundTripper(rt)

	err := c.Put(ctxTODO(), "/boot-source", fcapi.BootSource{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid kernel path", apiErr.Message)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestUnexpectedStatusIsTransportError(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(502, `not json`)}}
	c := NewWithRoundTripper(rt)

	err := c.Put(ctxTODO(), "/boot-source", fcapi.BootSource{})
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 502, transportErr.StatusCode)
}

func TestCreateSyncActionMarshalsActionType(t *testing.T) {
	rt := &recordingRoundTripper{responses: []*http.Response{jsonResponse(204, "")}}
	c := NewWithRoundTripper(rt)

	err := c.CreateSyncAction(ctxTODO(), fcapi.ActionInstanceStart)
	require.NoError(t, err)

	body, _ := io.ReadAll(rt.requests[0].Body)
	var action fcapi.Action
	require.NoError(t, json.Unmarshal(body, &action))
	assert.Equal(t, fcapi.ActionInstanceStart, action.ActionType)
}
