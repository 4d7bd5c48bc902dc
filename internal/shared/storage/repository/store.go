// Package repository 数据库无关的 SQL 存储层
//
// 通过 dbutil.Dialect 接口屏蔽不同数据库的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
// 文档库部署请使用 mongostore；本包服务于 SQLite/PostgreSQL 部署与测试。
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leavedesk/internal/shared/storage"
	"leavedesk/internal/shared/storage/dbutil"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store 通用 SQL 存储实现
// 实现了 storage.PersistentStore 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

// NewStore 创建通用存储并执行自动迁移
func NewStore(db *sql.DB, dialect dbutil.Dialect) (*Store, error) {
	if err := dialect.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("repository: migrate failed: %w", err)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// wrapError 将底层数据库错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrDuplicate
	}
	// modernc.org/sqlite 的约束错误只能按文本识别
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return storage.ErrDuplicate
	}
	return err
}

// requestWhere 将 RequestFilter 翻译为 WHERE 条件和参数
// 返回的占位符从 $1 开始连续编号
func requestWhere(d dbutil.Dialect, f storage.RequestFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	if f.UserID != "" {
		conds = append(conds, "user_id = "+next())
		args = append(args, f.UserID)
	}
	if f.Search != "" {
		conds = append(conds, "reason "+d.ILike()+" "+next())
		args = append(args, "%"+f.Search+"%")
	}
	if f.Status != "" {
		conds = append(conds, "status = "+next())
		args = append(args, f.Status)
	}
	if !f.OnDate.IsZero() {
		conds = append(conds, "start_date >= "+next())
		args = append(args, f.OnDate)
		conds = append(conds, "start_date < "+next())
		args = append(args, f.OnDate.Add(24*time.Hour))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// requestOrderLimit ORDER BY / LIMIT / OFFSET 子句
func requestOrderLimit(f storage.RequestFilter) string {
	clause := " ORDER BY created_on DESC"
	switch f.Sort {
	case storage.SortAsc:
		clause = " ORDER BY start_date ASC"
	case storage.SortDesc:
		clause = " ORDER BY start_date DESC"
	}
	if f.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", f.Limit)
		if f.Offset > 0 {
			clause += fmt.Sprintf(" OFFSET %d", f.Offset)
		}
	}
	return clause
}
