package model

import "time"

// RequestStatus 请假/远程办公请求状态
type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusApproved RequestStatus = "Approved"
	StatusRejected RequestStatus = "Rejected"
)

// Valid 状态是否合法
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// LeaveRequest 请假请求
//
// 附件两种存放方式：
//   - File 内嵌 base64 data URL（默认，与原始系统一致）
//   - FileKey 指向对象存储中的 key（配置了 MinIO 时，列表响应不携带文件体）
type LeaveRequest struct {
	ID        string        `json:"_id" bson:"_id" db:"id"`
	UserID    string        `json:"userId" bson:"user_id" db:"user_id"`
	StartDate time.Time     `json:"startDate" bson:"start_date" db:"start_date"`
	EndDate   time.Time     `json:"endDate" bson:"end_date" db:"end_date"`
	Reason    string        `json:"reason" bson:"reason" db:"reason"`
	Status    RequestStatus `json:"status" bson:"status" db:"status"`
	LeaveType string        `json:"leaveType" bson:"leave_type" db:"leave_type"`
	FileName  string        `json:"fileName,omitempty" bson:"file_name,omitempty" db:"file_name"`
	File      string        `json:"file,omitempty" bson:"file,omitempty" db:"file"`
	FileKey   string        `json:"fileKey,omitempty" bson:"file_key,omitempty" db:"file_key"`
	CreatedOn time.Time     `json:"createdOn" bson:"created_on" db:"created_on"`
}

// WfhRequest 远程办公请求
type WfhRequest struct {
	ID        string        `json:"_id" bson:"_id" db:"id"`
	UserID    string        `json:"userId" bson:"user_id" db:"user_id"`
	StartDate time.Time     `json:"startDate" bson:"start_date" db:"start_date"`
	EndDate   time.Time     `json:"endDate" bson:"end_date" db:"end_date"`
	Reason    string        `json:"reason" bson:"reason" db:"reason"`
	Status    RequestStatus `json:"status" bson:"status" db:"status"`
	CreatedOn time.Time     `json:"createdOn" bson:"created_on" db:"created_on"`
}
