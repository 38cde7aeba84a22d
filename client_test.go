package tripo

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripolabs/tripo-go/testutil"
	"github.com/tripolabs/tripo-go/types"
)

func newTestClient(t *testing.T, server *testutil.APIServer) *Client {
	t.Helper()
	client, err := New(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthenticationMissing, types.GetErrorCode(err))

	_, err = New(Config{APIKey: "   "}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, types.ErrAuthenticationMissing, types.GetErrorCode(err))
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(Config{APIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL.String())
	assert.Equal(t, 30*time.Second, client.client.Timeout)
	assert.NotNil(t, client.logger)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	client, err := New(Config{APIKey: "k", BaseURL: "https://example.com/v2/openapi/"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v2/openapi/task", client.endpointURL("task"))
}

func TestClient_ErrorMapping(t *testing.T) {
	cases := []struct {
		status    int
		code      types.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, types.ErrUnauthorized, false},
		{http.StatusForbidden, types.ErrForbidden, false},
		{http.StatusTooManyRequests, types.ErrRateLimited, true},
		{http.StatusBadRequest, types.ErrInvalidRequest, false},
		{http.StatusNotFound, types.ErrInvalidRequest, false},
		{http.StatusBadGateway, types.ErrUpstreamError, true},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"code": 2000, "message": "nope"}`))
		}))

		client, err := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())
		require.NoError(t, err)

		_, err = client.GetBalance(testutil.TestContext(t))
		require.Error(t, err)
		assert.Equal(t, tc.code, types.GetErrorCode(err), "status %d", tc.status)
		assert.Equal(t, tc.retryable, types.IsRetryable(err), "status %d", tc.status)

		var apiErr *types.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.status, apiErr.HTTPStatus)
		assert.Contains(t, apiErr.Message, "nope")

		server.Close()
	}
}

func TestClient_DecodeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": not json`))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetBalance(testutil.TestContext(t))
	require.Error(t, err)
	assert.Equal(t, types.ErrDecodeFailure, types.GetErrorCode(err))
}

func TestClient_NetworkFailure(t *testing.T) {
	// A closed server yields a connection error before any HTTP status.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetBalance(testutil.TestContext(t))
	require.Error(t, err)
	assert.Equal(t, types.ErrNetworkFailure, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestClient_SendsBearerAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": {"balance": 1, "frozen": 0}}`))
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "secret-key", BaseURL: server.URL}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetBalance(testutil.TestContext(t))
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}
