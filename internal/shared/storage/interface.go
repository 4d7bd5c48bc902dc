// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（文档库，默认）、repository/（SQL，经 dbutil 方言层）
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"
	"time"

	"leavedesk/internal/shared/model"
)

// ============================================================================
// 查询参数类型
// ============================================================================

// SortDirection 排序方向
type SortDirection string

const (
	// SortNone 未指定排序，各实现按 createdOn 倒序返回
	SortNone SortDirection = ""
	// SortAsc startDate 升序
	SortAsc SortDirection = "asc"
	// SortDesc startDate 降序
	SortDesc SortDirection = "desc"
)

// RequestFilter 请求列表的筛选/排序/分页参数
//
// Limit <= 0 表示不分页（返回全部匹配项）。
type RequestFilter struct {
	UserID string        // 按所有者筛选，空为全部
	Search string        // reason 大小写不敏感的子串匹配，空为不筛选
	Status string        // status 精确匹配，空为不筛选
	OnDate time.Time     // startDate 落在 [OnDate, OnDate+24h)，零值为不筛选
	Sort   SortDirection // 显式排序作用于 startDate；SortNone 时按 createdOn 倒序
	Limit  int
	Offset int
}

// EmployeeFilter 员工目录的筛选/分页参数
type EmployeeFilter struct {
	Search string // userName 或 email 大小写不敏感的子串匹配
	Limit  int
	Offset int
}

// ============================================================================
// 部分更新类型
// ============================================================================

// RequestUpdate 请求的部分更新，nil 字段不改动
//
// 对应原始系统的 findByIdAndUpdate(body) 语义：调用方送什么就改什么。
type RequestUpdate struct {
	StartDate *time.Time
	EndDate   *time.Time
	Reason    *string
	Status    *model.RequestStatus
	LeaveType *string
	FileName  *string
	File      *string
	FileKey   *string
}

// Empty 是否没有任何字段需要更新
func (u *RequestUpdate) Empty() bool {
	return u.StartDate == nil && u.EndDate == nil && u.Reason == nil &&
		u.Status == nil && u.LeaveType == nil && u.FileName == nil &&
		u.File == nil && u.FileKey == nil
}

// ============================================================================
// 存储接口
// ============================================================================

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// ListEmployees 员工目录：userName 升序，返回 (items, total)
	ListEmployees(ctx context.Context, f EmployeeFilter) ([]*model.User, int, error)
	// GetUsersByIDs 批量取用户，用于列表响应的 owner 内嵌（populate）
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

// LeaveStore 请假请求存储接口
type LeaveStore interface {
	CreateLeaveRequest(ctx context.Context, req *model.LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id string) (*model.LeaveRequest, error)
	// ListLeaveRequests 返回 (items, total)，total 为筛选后的总条数
	ListLeaveRequests(ctx context.Context, f RequestFilter) ([]*model.LeaveRequest, int, error)
	// UpdateLeaveRequest 部分更新并返回更新后的文档，不存在时返回 ErrNotFound
	UpdateLeaveRequest(ctx context.Context, id string, upd RequestUpdate) (*model.LeaveRequest, error)
	DeleteLeaveRequest(ctx context.Context, id string) error
}

// WfhStore 远程办公请求存储接口
type WfhStore interface {
	CreateWfhRequest(ctx context.Context, req *model.WfhRequest) error
	GetWfhRequest(ctx context.Context, id string) (*model.WfhRequest, error)
	ListWfhRequests(ctx context.Context, f RequestFilter) ([]*model.WfhRequest, int, error)
	UpdateWfhRequest(ctx context.Context, id string, upd RequestUpdate) (*model.WfhRequest, error)
	DeleteWfhRequest(ctx context.Context, id string) error
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	LeaveStore
	WfhStore
	Close() error
}
