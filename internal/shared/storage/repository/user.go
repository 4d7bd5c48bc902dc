package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
)

const userCols = "id, user_name, email, mobile, password_hash, role, created_on"

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.CreatedOn)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser 创建用户
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, user_name, email, mobile, password_hash, role, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`),
		user.ID, user.UserName, user.Email, user.Mobile,
		user.PasswordHash, user.Role, user.CreatedOn,
	)
	return wrapError(err)
}

// GetUserByEmail 通过邮箱查找用户，不存在时返回 (nil, nil)
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userCols+` FROM users WHERE email = $1`), email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, wrapError(err)
}

// GetUserByID 通过 ID 查找用户，不存在时返回 (nil, nil)
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userCols+` FROM users WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, wrapError(err)
}

// ListEmployees 员工目录：userName 升序 + 可选搜索 + 分页
func (s *Store) ListEmployees(ctx context.Context, f storage.EmployeeFilter) ([]*model.User, int, error) {
	where := ""
	var args []interface{}
	if f.Search != "" {
		where = " WHERE user_name " + s.dialect.ILike() + " $1 OR email " + s.dialect.ILike() + " $2"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM users`+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	query := `SELECT ` + userCols + ` FROM users` + where + ` ORDER BY user_name ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
		if f.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// GetUsersByIDs 批量取用户
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	result := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+userCols+` FROM users WHERE id IN (`+strings.Join(placeholders, ", ")+`)`), args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	return result, rows.Err()
}
