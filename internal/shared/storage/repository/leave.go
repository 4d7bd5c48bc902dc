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

const leaveCols = "id, user_id, start_date, end_date, reason, status, leave_type, file_name, file, file_key, created_on"

func scanLeave(row interface{ Scan(...interface{}) error }) (*model.LeaveRequest, error) {
	r := &model.LeaveRequest{}
	err := row.Scan(&r.ID, &r.UserID, &r.StartDate, &r.EndDate, &r.Reason, &r.Status,
		&r.LeaveType, &r.FileName, &r.File, &r.FileKey, &r.CreatedOn)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateLeaveRequest 创建请假请求
func (s *Store) CreateLeaveRequest(ctx context.Context, req *model.LeaveRequest) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO leave_requests (`+leaveCols+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`),
		req.ID, req.UserID, req.StartDate, req.EndDate, req.Reason, req.Status,
		req.LeaveType, req.FileName, req.File, req.FileKey, req.CreatedOn,
	)
	return wrapError(err)
}

// GetLeaveRequest 按 ID 查找，不存在时返回 (nil, nil)
func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*model.LeaveRequest, error) {
	r, err := scanLeave(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+leaveCols+` FROM leave_requests WHERE id = $1`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, wrapError(err)
}

// ListLeaveRequests 筛选 + 排序 + 分页，返回 (items, total)
func (s *Store) ListLeaveRequests(ctx context.Context, f storage.RequestFilter) ([]*model.LeaveRequest, int, error) {
	where, args := requestWhere(s.dialect, f)

	var total int
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM leave_requests`+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+leaveCols+` FROM leave_requests`+where+requestOrderLimit(f)), args...)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	defer rows.Close()

	items := []*model.LeaveRequest{}
	for rows.Next() {
		r, err := scanLeave(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}

// UpdateLeaveRequest 部分更新并返回更新后的记录
func (s *Store) UpdateLeaveRequest(ctx context.Context, id string, upd storage.RequestUpdate) (*model.LeaveRequest, error) {
	sets, args := requestUpdateSets(upd)
	if upd.LeaveType != nil {
		sets = append(sets, fmt.Sprintf("leave_type = $%d", len(args)+1))
		args = append(args, *upd.LeaveType)
	}
	if upd.FileName != nil {
		sets = append(sets, fmt.Sprintf("file_name = $%d", len(args)+1))
		args = append(args, *upd.FileName)
	}
	if upd.File != nil {
		sets = append(sets, fmt.Sprintf("file = $%d", len(args)+1))
		args = append(args, *upd.File)
	}
	if upd.FileKey != nil {
		sets = append(sets, fmt.Sprintf("file_key = $%d", len(args)+1))
		args = append(args, *upd.FileKey)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx, s.rebind(
			`UPDATE leave_requests SET `+strings.Join(sets, ", ")+
				fmt.Sprintf(` WHERE id = $%d`, len(args))), args...)
		if err != nil {
			return nil, wrapError(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, storage.ErrNotFound
		}
	}

	r, err := s.GetLeaveRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// DeleteLeaveRequest 删除请假请求
func (s *Store) DeleteLeaveRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM leave_requests WHERE id = $1`), id)
	if err != nil {
		return wrapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// requestUpdateSets 公共字段的 SET 表达式（leave 与 wfh 共用）
func requestUpdateSets(upd storage.RequestUpdate) ([]string, []interface{}) {
	var sets []string
	var args []interface{}
	if upd.StartDate != nil {
		sets = append(sets, fmt.Sprintf("start_date = $%d", len(args)+1))
		args = append(args, *upd.StartDate)
	}
	if upd.EndDate != nil {
		sets = append(sets, fmt.Sprintf("end_date = $%d", len(args)+1))
		args = append(args, *upd.EndDate)
	}
	if upd.Reason != nil {
		sets = append(sets, fmt.Sprintf("reason = $%d", len(args)+1))
		args = append(args, *upd.Reason)
	}
	if upd.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *upd.Status)
	}
	return sets, args
}
