// 包 store：PostgreSQL 查询历史与统计的数据访问层
package store

import (
	"context"
	"database/sql"

	"ip-api-client/pkg/ipapi"

	_ "github.com/lib/pq"
)

// Store：数据库访问入口，持有连接池并提供历史写入与统计读取
type Store struct {
	db *sql.DB
}

// AttachDB：复用已打开的连接池（测试与手工注入场景）
func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Totals：总量统计
type Totals struct {
	Total int64
	Today int64
}

// RecordLookup：记录一次完成的查询并累加计数
// 背景：历史表用于追溯与数据分析，计数表用于 /stats 快速读取；
// source 标注结果来源（remote/local）。
// 约束：写入失败由调用方决定是否忽略，不影响查询主链路。
func (s *Store) RecordLookup(ctx context.Context, res *ipapi.Result, source string) error {
	country := ""
	if res.Country != nil {
		country = res.Country.Name
	}
	city := ""
	if res.City != nil {
		city = *res.City
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO _ipapi_lookups(ip, country, city, source) VALUES($1,$2,$3,$4)`,
		res.Query, country, city, source,
	); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE _ipapi_stats_total SET total_queries = total_queries + 1 WHERE id = 1`,
	); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO _ipapi_stats_daily(day, queries) VALUES(CURRENT_DATE, 1)
		 ON CONFLICT (day) DO UPDATE SET queries = _ipapi_stats_daily.queries + 1`,
	)
	return err
}

// GetTotals：读取总量与当日计数
func (s *Store) GetTotals(ctx context.Context) (Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx,
		`SELECT total_queries FROM _ipapi_stats_total WHERE id = 1`,
	).Scan(&t.Total); err != nil && err != sql.ErrNoRows {
		return t, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT queries FROM _ipapi_stats_daily WHERE day = CURRENT_DATE`,
	).Scan(&t.Today); err != nil && err != sql.ErrNoRows {
		return t, err
	}
	return t, nil
}
