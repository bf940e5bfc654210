package store

import (
	"database/sql"

	"ip-api-client/internal/logger"
)

// EnsureSchema：首次运行自动创建历史与统计表
// 背景：避免手工建表步骤，保障查询与统计随时可写
// 约束：使用 IF NOT EXISTS 与既有结构共存；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _ipapi_lookups (
            id SERIAL PRIMARY KEY,
            ip TEXT NOT NULL,
            country TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            source TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_ip ON _ipapi_lookups(ip)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_created ON _ipapi_lookups(created_at)`,
		`CREATE TABLE IF NOT EXISTS _ipapi_stats_total (
            id INT PRIMARY KEY,
            total_queries BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _ipapi_stats_daily (
            day DATE PRIMARY KEY,
            queries BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _ipapi_stats_total(id, total_queries)
         VALUES(1, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
