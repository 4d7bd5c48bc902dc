package mongostore

import (
	"context"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// LeaveStore
// ============================================================================

func (s *Store) CreateLeaveRequest(ctx context.Context, req *model.LeaveRequest) error {
	return insertOne(ctx, s.col(ColLeaveRequests), req)
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*model.LeaveRequest, error) {
	return findOne[model.LeaveRequest](ctx, s.col(ColLeaveRequests), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListLeaveRequests(ctx context.Context, f storage.RequestFilter) ([]*model.LeaveRequest, int, error) {
	return findPage[model.LeaveRequest](ctx, s.col(ColLeaveRequests),
		requestFilterDoc(f), requestFindOptions(f))
}

func (s *Store) UpdateLeaveRequest(ctx context.Context, id string, upd storage.RequestUpdate) (*model.LeaveRequest, error) {
	set := requestUpdateDoc(upd)
	if upd.LeaveType != nil {
		set = append(set, bson.E{Key: "leave_type", Value: *upd.LeaveType})
	}
	if upd.FileName != nil {
		set = append(set, bson.E{Key: "file_name", Value: *upd.FileName})
	}
	if upd.File != nil {
		set = append(set, bson.E{Key: "file", Value: *upd.File})
	}
	if upd.FileKey != nil {
		set = append(set, bson.E{Key: "file_key", Value: *upd.FileKey})
	}
	if len(set) == 0 {
		return s.getOrNotFound(ctx, id)
	}
	return updateAndReturn[model.LeaveRequest](ctx, s.col(ColLeaveRequests), id, set)
}

// getOrNotFound 空更新时退化为读取，保持"返回更新后文档"的契约
func (s *Store) getOrNotFound(ctx context.Context, id string) (*model.LeaveRequest, error) {
	req, err := s.GetLeaveRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, storage.ErrNotFound
	}
	return req, nil
}

func (s *Store) DeleteLeaveRequest(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColLeaveRequests), id)
}

// requestUpdateDoc 公共字段的 $set 文档（leave 与 wfh 共用）
func requestUpdateDoc(upd storage.RequestUpdate) bson.D {
	set := bson.D{}
	if upd.StartDate != nil {
		set = append(set, bson.E{Key: "start_date", Value: *upd.StartDate})
	}
	if upd.EndDate != nil {
		set = append(set, bson.E{Key: "end_date", Value: *upd.EndDate})
	}
	if upd.Reason != nil {
		set = append(set, bson.E{Key: "reason", Value: *upd.Reason})
	}
	if upd.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *upd.Status})
	}
	return set
}
