package cache

import (
	"context"
	"encoding/json"
	"time"

	"ip-api-client/internal/logger"
	"ip-api-client/pkg/ipapi"

	"github.com/redis/go-redis/v9"
)

// 文档注释：Redis 结果缓存
// 背景：多实例部署时共享缓存降低对远端服务的请求量；键为 ip:<地址>，
// 值为 JSON 序列化的结果，过期由 Redis TTL 负责。
// 约束：读写错误只记录调试日志并按未命中处理，不影响主查询链路。
type Redis struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedis(rc *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rc: rc, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, ip string) (*ipapi.Result, bool) {
	s, err := r.rc.Get(ctx, "ip:"+ip).Result()
	if err != nil || s == "" {
		return nil, false
	}
	var res ipapi.Result
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		logger.L().Debug("cache_decode_error", "ip", ip, "err", err)
		return nil, false
	}
	return &res, true
}

func (r *Redis) Set(ctx context.Context, ip string, res *ipapi.Result) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.rc.Set(ctx, "ip:"+ip, string(b), r.ttl).Err(); err != nil {
		logger.L().Debug("cache_set_error", "ip", ip, "err", err)
	}
}
