package mongostore

import (
	"context"
	"errors"
	"time"

	"leavedesk/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// wrapError 将 MongoDB 错误转换为领域错误
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrDuplicate
	}
	return err
}

// findOne 查找单个文档并解码到 result
// 文档不存在时返回 (nil, nil)
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	var result T
	err := col.FindOne(ctx, filter).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &result, nil
}

// findMany 查找多个文档
func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	var results []*T
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	if results == nil {
		results = []*T{}
	}
	return results, nil
}

// findPage 带总数的分页查询，filter 相同的 Count 与 Find 两次往返
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts options.Lister[options.FindOptions]) ([]*T, int, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err)
	}
	items, err := findMany[T](ctx, col, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// insertOne 插入单个文档
func insertOne(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err)
}

// deleteByID 按 _id 删除
func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// updateAndReturn 按 _id 执行 $set 并返回更新后的文档
func updateAndReturn[T any](ctx context.Context, col *mongo.Collection, id string, set bson.D) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var result T
	err := col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&result)
	if err != nil {
		return nil, wrapError(err)
	}
	return &result, nil
}

// requestFilterDoc 将 storage.RequestFilter 翻译为 bson 查询
func requestFilterDoc(f storage.RequestFilter) bson.D {
	filter := bson.D{}
	if f.UserID != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: f.UserID})
	}
	if f.Search != "" {
		filter = append(filter, bson.E{Key: "reason", Value: bson.D{
			{Key: "$regex", Value: f.Search},
			{Key: "$options", Value: "i"},
		}})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if !f.OnDate.IsZero() {
		filter = append(filter, bson.E{Key: "start_date", Value: bson.D{
			{Key: "$gte", Value: f.OnDate},
			{Key: "$lt", Value: f.OnDate.Add(24 * time.Hour)},
		}})
	}
	return filter
}

// requestFindOptions 翻译排序和分页参数
func requestFindOptions(f storage.RequestFilter) *options.FindOptionsBuilder {
	opts := options.Find()
	switch f.Sort {
	case storage.SortAsc:
		opts.SetSort(bson.D{{Key: "start_date", Value: 1}})
	case storage.SortDesc:
		opts.SetSort(bson.D{{Key: "start_date", Value: -1}})
	default:
		opts.SetSort(bson.D{{Key: "created_on", Value: -1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
		if f.Offset > 0 {
			opts.SetSkip(int64(f.Offset))
		}
	}
	return opts
}
