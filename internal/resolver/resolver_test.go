package resolver

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"ip-api-client/internal/cache"
	"ip-api-client/pkg/ipapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	res   *ipapi.Result
	err   error
	calls int
}

func (s *stubRemote) Query(_ context.Context, _ netip.Addr) (*ipapi.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func TestLookupRemoteThenCache(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory(time.Hour)
	t.Cleanup(mem.Stop)

	remote := &stubRemote{res: &ipapi.Result{Query: "8.8.8.8"}}
	r := New(mem, remote, nil, nil, nil)

	addr := netip.MustParseAddr("8.8.8.8")

	res, source, err := r.Lookup(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, "8.8.8.8", res.Query)

	// 第二次命中缓存，不再访问远端
	res, source, err = r.Lookup(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, "8.8.8.8", res.Query)
	assert.Equal(t, 1, remote.calls)
}

func TestLookupRemoteFailureNoFallback(t *testing.T) {
	t.Parallel()

	wantErr := &ipapi.Error{Stage: ipapi.StageTransport, Err: context.DeadlineExceeded}
	remote := &stubRemote{err: wantErr}
	r := New(nil, remote, nil, nil, nil)

	_, _, err := r.Lookup(context.Background(), netip.MustParseAddr("8.8.8.8"))
	require.Error(t, err)

	var e *ipapi.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ipapi.StageTransport, e.Stage)
}

func TestLookupSelfSkipsCache(t *testing.T) {
	t.Parallel()

	mem := cache.NewMemory(time.Hour)
	t.Cleanup(mem.Stop)

	remote := &stubRemote{res: &ipapi.Result{Query: "203.0.113.7"}}
	r := New(mem, remote, nil, nil, nil)

	_, source, err := r.Lookup(context.Background(), netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, source)
	assert.Equal(t, 0, mem.Size())

	// 自身地址查询不可缓存，每次都访问远端
	_, _, err = r.Lookup(context.Background(), netip.Addr{})
	require.NoError(t, err)
	assert.Equal(t, 2, remote.calls)
}
