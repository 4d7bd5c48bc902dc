// Package eventbus 事件总线抽象接口
//
// 广播请求生命周期事件（创建/审批/删除），供 WebSocket 网关推送给
// 在线的 Manager 看板。单实例部署用 MemoryBus，多实例用 Redis Pub/Sub。
package eventbus

import (
	"context"
	"time"

	"leavedesk/internal/shared/model"
)

// 事件类型常量
const (
	EventRequestCreated = "request_created"
	EventRequestUpdated = "request_updated"
	EventRequestDeleted = "request_deleted"
)

// 请求种类常量
const (
	KindLeave = "leave"
	KindWfh   = "wfh"
)

// Event 请求生命周期事件
type Event struct {
	Type      string              `json:"type"`
	Kind      string              `json:"kind"`
	RequestID string              `json:"requestId"`
	UserID    string              `json:"userId"`
	Status    model.RequestStatus `json:"status,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Bus 事件总线接口
type Bus interface {
	// Publish 发布事件，失败不应阻断业务流程（调用方仅记录日志）
	Publish(ctx context.Context, event *Event) error
	// Subscribe 订阅事件流，返回取消函数；取消后通道关闭
	Subscribe(ctx context.Context) (<-chan *Event, func(), error)
	Close() error
}
