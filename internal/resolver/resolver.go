// 包 resolver：缓存→远端→本地兜底的查询链
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"net/netip"
	"time"

	"ip-api-client/internal/cache"
	"ip-api-client/internal/localdb"
	"ip-api-client/internal/metrics"
	"ip-api-client/internal/store"
	"ip-api-client/pkg/ipapi"
)

// Remote：远端查询能力的最小接口，便于测试替换
type Remote interface {
	Query(ctx context.Context, addr netip.Addr) (*ipapi.Result, error)
}

// 结果来源标注
const (
	SourceCache  = "cache"
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// 文档注释：查询解析器
// 背景：组合缓存、远端客户端与离线兜底为一条线性链路，并在各环节落指标与历史；
// 每次调用独立，无内部重试。
// 约束：cache/local/store 均可为 nil，缺失的环节直接跳过；远端失败且无兜底时
// 原样返回带阶段标签的错误。
type Resolver struct {
	cache  cache.Cache
	remote Remote
	local  *localdb.DB
	store  *store.Store
	log    *slog.Logger
}

func New(c cache.Cache, remote Remote, local *localdb.DB, st *store.Store, l *slog.Logger) *Resolver {
	if l == nil {
		l = slog.Default()
	}
	return &Resolver{cache: c, remote: remote, local: local, store: st, log: l}
}

// Lookup：解析一个地址，返回结果与来源标注
// 背景：addr 为零值时表示查询本机公网地址，此时跳过缓存与兜底（键不可知、本地库无意义）。
func (r *Resolver) Lookup(ctx context.Context, addr netip.Addr) (*ipapi.Result, string, error) {
	metrics.LookupsTotal.Inc()
	t0 := time.Now()
	defer func() {
		metrics.LookupDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	}()

	key := ""
	if addr.IsValid() {
		key = addr.String()
	}

	if key != "" && r.cache != nil {
		if res, ok := r.cache.Get(ctx, key); ok {
			metrics.CacheHitsTotal.Inc()
			return res, SourceCache, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	res, err := r.remote.Query(ctx, addr)
	if err == nil {
		if key != "" && r.cache != nil {
			r.cache.Set(ctx, key, res)
		}
		r.record(ctx, res, SourceRemote)
		return res, SourceRemote, nil
	}

	var e *ipapi.Error
	if errors.As(err, &e) {
		metrics.RemoteFailTotal.WithLabelValues(string(e.Stage)).Inc()
	} else {
		metrics.RemoteFailTotal.WithLabelValues("unknown").Inc()
	}
	r.log.Debug("remote_query_failed", "ip", key, "err", err)

	if key != "" && r.local != nil {
		if lres, lerr := r.local.Lookup(addr); lerr == nil {
			metrics.LocalFallbackTotal.Inc()
			r.record(ctx, lres, SourceLocal)
			return lres, SourceLocal, nil
		}
	}

	return nil, "", err
}

// record：历史落库，失败不阻断主链路
func (r *Resolver) record(ctx context.Context, res *ipapi.Result, source string) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordLookup(ctx, res, source); err != nil {
		r.log.Debug("store_record_error", "err", err)
	}
}
