// 程序入口：读取配置、初始化依赖并启动缓存查询守护进程；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ip-api-client/internal/api"
	"ip-api-client/internal/cache"
	"ip-api-client/internal/config"
	"ip-api-client/internal/localdb"
	"ip-api-client/internal/logger"
	"ip-api-client/internal/metrics"
	"ip-api-client/internal/middleware"
	"ip-api-client/internal/resolver"
	"ip-api-client/internal/store"
	"ip-api-client/internal/utils"
	"ip-api-client/pkg/ipapi"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))

	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg := config.Load()
	l.Debug("config_loaded", "addr", cfg.Addr, "api_base", cfg.APIBase)

	// 结果缓存：Redis 可用时共享缓存，否则进程内 TTL 缓存
	var resultCache cache.Cache
	if rc := utils.OpenRedisFromEnv(); rc != nil {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		resultCache = cache.NewRedis(rc, cfg.CacheTTL)
	} else {
		l.Info("redis_disabled")
		mem := cache.NewMemory(cfg.CacheTTL)
		defer mem.Stop()
		resultCache = mem
	}

	// 查询历史：可选 Postgres
	var st *store.Store
	if cfg.StoreEnabled {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := store.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
	} else {
		l.Info("store_disabled")
	}

	// 离线兜底：文件缺失只记录日志，不阻塞启动
	local := localdb.Open(cfg.MMDBCityPath, cfg.MMDBASNPath, l)
	if local == nil {
		l.Info("localdb_disabled")
	} else {
		defer local.Close()
	}

	client := ipapi.New(&http.Client{Timeout: cfg.HTTPTimeout}, logger.With("ipapi"))
	res := resolver.New(resultCache, client, local, st, l)

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(res, st)
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)

	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}
