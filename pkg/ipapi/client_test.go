package ipapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport：将固定入口的请求改写到测试服务器
// 背景：基础地址按契约不可配置，测试通过替换传输层把流量导向 httptest 实例，
// 同时保留客户端真实构造的路径以便断言请求形状。
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return New(&http.Client{Transport: rewriteTransport{target: target}}, nil)
}

func TestClientQueryEndToEnd(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"query":"8.8.8.8","country":"United States","countryCode":"US","city":"Mountain View","lat":37.386,"lon":-122.0838,"mobile":false,"proxy":false}`))
	}))

	res, err := c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
	require.NoError(t, err)

	assert.Equal(t, "/json/8.8.8.8", gotPath)
	assert.Equal(t, "8.8.8.8", res.Query)
	assert.Equal(t, &NameAndCode{Name: "United States", Code: "US"}, res.Country)
	assert.Equal(t, strPtr("Mountain View"), res.City)
	assert.Equal(t, &Coordinates{Latitude: 37.386, Longitude: -122.0838}, res.Location)
	assert.Nil(t, res.Region)
	assert.False(t, res.Mobile)
	assert.False(t, res.Proxy)
}

func TestClientQuerySelf(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"query":"203.0.113.7"}`))
	}))

	res, err := c.Query(context.Background(), netip.Addr{})
	require.NoError(t, err)

	// 未给定地址时目标不携带地址路径段
	assert.Equal(t, "/json", gotPath)
	assert.Equal(t, "203.0.113.7", res.Query)
}

func TestClientQueryIPv6(t *testing.T) {
	t.Parallel()

	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"query":"2001:4860:4860::8888"}`))
	}))

	_, err := c.Query(context.Background(), netip.MustParseAddr("2001:4860:4860::8888"))
	require.NoError(t, err)
	assert.Equal(t, "/json/2001:4860:4860::8888", gotPath)
}

func TestClientTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	srv.Close() // 连接拒绝

	c := New(&http.Client{Transport: rewriteTransport{target: target}}, nil)
	_, err = c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, StageTransport, e.Stage)
}

func TestClientNon2xxStatus(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, StageTransport, e.Stage)
}

func TestClientInvalidBody(t *testing.T) {
	t.Parallel()

	t.Run("non utf8 body", func(t *testing.T) {
		t.Parallel()

		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte{0xc3, 0x28})
		}))

		_, err := c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("truncated json", func(t *testing.T) {
		t.Parallel()

		c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"query":`))
		}))

		_, err := c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
		require.Error(t, err)

		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, StageParse, e.Stage)
	})
}

func TestClientConcurrentQueries(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":"8.8.8.8"}`))
	}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Query(context.Background(), netip.MustParseAddr("8.8.8.8"))
			assert.NoError(t, err)
			assert.Equal(t, "8.8.8.8", res.Query)
		}()
	}
	wg.Wait()
}
