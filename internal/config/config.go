// 包 config：集中读取进程配置；.env 文件由入口通过 godotenv 预加载
package config

import (
	"os"
	"strconv"
	"time"
)

// 文档注释：守护进程与客户端的运行配置
// 背景：统一在启动时读取一次环境变量，避免各模块散落读取导致口径不一致；
// 连接类配置（Redis/Postgres DSN）仍由 utils 的打开函数按各自前缀读取。
type Config struct {
	// HTTP 服务
	Addr    string
	APIBase string

	// 远端查询
	HTTPTimeout time.Duration

	// 结果缓存
	CacheTTL     time.Duration
	RedisEnabled bool

	// 查询历史（Postgres）
	StoreEnabled bool

	// 本地离线兜底数据库
	MMDBCityPath string
	MMDBASNPath  string
}

// Load：从环境变量构造配置，全部字段带默认值
func Load() *Config {
	return &Config{
		Addr:         envOrDefault("ADDR", ":8080"),
		APIBase:      envOrDefault("API_BASE", "/api"),
		HTTPTimeout:  envDurationOrDefault("HTTP_TIMEOUT_SECONDS", 10*time.Second),
		CacheTTL:     envDurationOrDefault("CACHE_TTL_SECONDS", 24*time.Hour),
		RedisEnabled: os.Getenv("REDIS_ENABLE") == "true",
		StoreEnabled: os.Getenv("PG_ENABLE") == "true",
		MMDBCityPath: envOrDefault("MMDB_CITY_PATH", "data/GeoLite2-City.mmdb"),
		MMDBASNPath:  envOrDefault("MMDB_ASN_PATH", "data/GeoLite2-ASN.mmdb"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDurationOrDefault：按秒读取时长，解析失败回退默认值
func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
