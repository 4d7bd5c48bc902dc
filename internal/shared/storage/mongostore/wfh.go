package mongostore

import (
	"context"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// WfhStore
// ============================================================================

func (s *Store) CreateWfhRequest(ctx context.Context, req *model.WfhRequest) error {
	return insertOne(ctx, s.col(ColWfhRequests), req)
}

func (s *Store) GetWfhRequest(ctx context.Context, id string) (*model.WfhRequest, error) {
	return findOne[model.WfhRequest](ctx, s.col(ColWfhRequests), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListWfhRequests(ctx context.Context, f storage.RequestFilter) ([]*model.WfhRequest, int, error) {
	return findPage[model.WfhRequest](ctx, s.col(ColWfhRequests),
		requestFilterDoc(f), requestFindOptions(f))
}

func (s *Store) UpdateWfhRequest(ctx context.Context, id string, upd storage.RequestUpdate) (*model.WfhRequest, error) {
	set := requestUpdateDoc(upd)
	if len(set) == 0 {
		req, err := s.GetWfhRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, storage.ErrNotFound
		}
		return req, nil
	}
	return updateAndReturn[model.WfhRequest](ctx, s.col(ColWfhRequests), id, set)
}

func (s *Store) DeleteWfhRequest(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColWfhRequests), id)
}
