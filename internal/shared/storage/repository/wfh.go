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

const wfhCols = "id, user_id, start_date, end_date, reason, status, created_on"

func scanWfh(row interface{ Scan(...interface{}) error }) (*model.WfhRequest, error) {
	r := &model.WfhRequest{}
	err := row.Scan(&r.ID, &r.UserID, &r.StartDate, &r.EndDate, &r.Reason, &r.Status, &r.CreatedOn)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateWfhRequest 创建远程办公请求
func (s *Store) CreateWfhRequest(ctx context.Context, req *model.WfhRequest) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO wfh_requests (`+wfhCols+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`),
		req.ID, req.UserID, req.StartDate, req.EndDate, req.Reason, req.Status, req.CreatedOn,
	)
	return wrapError(err)
}

// GetWfhRequest 按 ID 查找，不存在时返回 (nil, nil)
func (s *Store) GetWfhRequest(ctx context.Context, id string) (*model.WfhRequest, error) {
	r, err := scanWfh(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+wfhCols+` FROM wfh_requests WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, wrapError(err)
}

// ListWfhRequests 筛选 + 排序 + 分页，返回 (items, total)
func (s *Store) ListWfhRequests(ctx context.Context, f storage.RequestFilter) ([]*model.WfhRequest, int, error) {
	where, args := requestWhere(s.dialect, f)

	var total int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM wfh_requests`+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+wfhCols+` FROM wfh_requests`+where+requestOrderLimit(f)), args...)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	defer rows.Close()

	items := []*model.WfhRequest{}
	for rows.Next() {
		r, err := scanWfh(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

// UpdateWfhRequest 部分更新并返回更新后的记录
func (s *Store) UpdateWfhRequest(ctx context.Context, id string, upd storage.RequestUpdate) (*model.WfhRequest, error) {
	sets, args := requestUpdateSets(upd)

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, s.rebind(
			`UPDATE wfh_requests SET `+strings.Join(sets, ", ")+
				fmt.Sprintf(` WHERE id = $%d`, len(args))), args...)
		if err != nil {
			return nil, wrapError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, storage.ErrNotFound
		}
	}

	r, err := s.GetWfhRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// DeleteWfhRequest 删除远程办公请求
func (s *Store) DeleteWfhRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM wfh_requests WHERE id = $1`), id)
	if err != nil {
		return wrapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
