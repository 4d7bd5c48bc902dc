package mongostore

import (
	"context"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListEmployees(ctx context.Context, f storage.EmployeeFilter) ([]*model.User, int, error) {
	filter := bson.D{}
	if f.Search != "" {
		re := bson.D{{Key: "$regex", Value: f.Search}, {Key: "$options", Value: "i"}}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "user_name", Value: re}},
			bson.D{{Key: "email", Value: re}},
		}})
	}

	opts := options.Find().SetSort(bson.D{{Key: "user_name", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
		if f.Offset > 0 {
			opts.SetSkip(int64(f.Offset))
		}
	}
	return findPage[model.User](ctx, s.col(ColUsers), filter, opts)
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	if len(ids) == 0 {
		return map[string]*model.User{}, nil
	}
	users, err := findMany[model.User](ctx, s.col(ColUsers),
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	result := make(map[string]*model.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}
