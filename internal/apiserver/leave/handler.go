// Package leave 请假申请的增删改查
package leave

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"leavedesk/internal/apiserver/auth"
	"leavedesk/internal/apiserver/listquery"
	"leavedesk/internal/shared/eventbus"
	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/objstore"
	"leavedesk/internal/shared/storage"
)

// 默认每页条数：全量列表 10 条，按用户列表 5 条
const (
	defaultLimitAll    = 10
	defaultLimitByUser = 5
)

// Handler 请假申请处理器
type Handler struct {
	store storage.LeaveStore
	users storage.UserStore
	bus   eventbus.Bus
	// objects 为 nil 时附件以 base64 内嵌在文档中
	objects *objstore.Client
}

// NewHandler 创建请假申请处理器
func NewHandler(store storage.LeaveStore, users storage.UserStore, bus eventbus.Bus, objects *objstore.Client) *Handler {
	return &Handler{store: store, users: users, bus: bus, objects: objects}
}

// applyRequest 申请请假请求体
type applyRequest struct {
	UserID    string    `json:"userId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	LeaveType string    `json:"leaveType"`
	FileName  string    `json:"fileName"`
	File      string    `json:"file"`
}

// Apply 处理 POST /api/leave/addLeaveRequest
// 未指定状态时默认 Pending，createdOn 由服务端填充
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid request body"})
		return
	}

	userID := req.UserID
	if userID == "" {
		if u := auth.GetAuthUser(r.Context()); u != nil {
			userID = u.ID
		}
	}

	status := model.StatusPending
	if req.Status != "" {
		status = model.RequestStatus(req.Status)
		if !status.Valid() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid status: " + req.Status})
			return
		}
	}

	lr := &model.LeaveRequest{
		ID:        generateID("lr"),
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Status:    status,
		LeaveType: req.LeaveType,
		FileName:  req.FileName,
		File:      req.File,
		CreatedOn: time.Now().UTC(),
	}

	// 配置了对象存储时附件外置，文档只保留 key
	if h.objects != nil && lr.File != "" {
		key := "leave/" + lr.ID
		if _, err := h.objects.UploadDataURL(r.Context(), key, lr.File); err != nil {
			log.Printf("[leave] attachment upload error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to store attachment"})
			return
		}
		lr.FileKey = key
		lr.File = ""
	}

	if err := h.store.CreateLeaveRequest(r.Context(), lr); err != nil {
		log.Printf("[leave] create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	h.publish(eventbus.EventRequestCreated, lr)
	writeJSON(w, http.StatusOK, lr)
}

// GetAll 处理 GET /api/leave/getAllLeaveRequests
//
// search / status / sort / page / limit 全部缺省时返回全量集合
// （createdOn 倒序的数组，不分页），否则返回分页信封。
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	p := listquery.Parse(r, defaultLimitAll)

	if !p.HasAny() {
		items, _, err := h.store.ListLeaveRequests(r.Context(), storage.RequestFilter{})
		if err != nil {
			log.Printf("[leave] list error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch leave requests"})
			return
		}
		writeJSON(w, http.StatusOK, h.populate(r.Context(), items))
		return
	}

	items, total, err := h.store.ListLeaveRequests(r.Context(), p.Filter(""))
	if err != nil {
		log.Printf("[leave] list error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch leave requests"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"allLeaveRequests": h.populate(r.Context(), items),
		"currentPage":      p.Page,
		"totalPages":       listquery.TotalPagesFloorZero(total, p.Limit),
		"totalItems":       total,
	})
}

// GetByID 处理 GET /api/leave/getLeaveRequestById/{id}
// 外置的附件在单条详情中还原为 base64 data URL
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lr, err := h.store.GetLeaveRequest(r.Context(), id)
	if err != nil {
		log.Printf("[leave] get %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch leave request"})
		return
	}
	if lr == nil {
		writeJSON(w, http.StatusNotFound, "Request not found")
		return
	}

	if h.objects != nil && lr.FileKey != "" {
		dataURL, err := h.objects.DownloadDataURL(r.Context(), lr.FileKey)
		if err != nil {
			log.Printf("[leave] attachment download error: %v", err)
		} else {
			lr.File = dataURL
		}
	}

	writeJSON(w, http.StatusOK, lr)
}

// GetByUserID 处理 GET /api/leave/getLeaveRequestByUserId/{userId}
//
// page 与 limit 均缺省时返回全量数组（过滤条件仍生效），
// 否则返回分页信封，默认每页 5 条，空集 totalPages 为 0。
func (h *Handler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	p := listquery.Parse(r, defaultLimitByUser)

	if !p.HasPage && !p.HasLimit {
		filter := p.Filter(userID)
		filter.Limit = 0
		filter.Offset = 0
		items, _, err := h.store.ListLeaveRequests(r.Context(), filter)
		if err != nil {
			log.Printf("[leave] list by user %s error: %v", userID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch leave requests"})
			return
		}
		if items == nil {
			items = []*model.LeaveRequest{}
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	items, total, err := h.store.ListLeaveRequests(r.Context(), p.Filter(userID))
	if err != nil {
		log.Printf("[leave] list by user %s error: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch leave requests"})
		return
	}
	if items == nil {
		items = []*model.LeaveRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaveRequests": items,
		"currentPage":   p.Page,
		"totalPages":    listquery.TotalPagesFloorZero(total, p.Limit),
		"totalItems":    total,
	})
}

// updateRequest 更新请求体，未出现的字段不修改
type updateRequest struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Reason    *string    `json:"reason"`
	Status    *string    `json:"status"`
	LeaveType *string    `json:"leaveType"`
	FileName  *string    `json:"fileName"`
	File      *string    `json:"file"`
}

// Update 处理 PUT /api/leave/updateLeaveRequest/{id}
// 部分更新，返回更新后的文档
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid request body"})
		return
	}

	upd := storage.RequestUpdate{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		LeaveType: req.LeaveType,
		FileName:  req.FileName,
		File:      req.File,
	}
	if req.Status != nil {
		status := model.RequestStatus(*req.Status)
		if !status.Valid() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid status: " + *req.Status})
			return
		}
		upd.Status = &status
	}

	// 附件外置模式下替换附件对象
	if h.objects != nil && req.File != nil && *req.File != "" {
		key := "leave/" + id
		if _, err := h.objects.UploadDataURL(r.Context(), key, *req.File); err != nil {
			log.Printf("[leave] attachment upload error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to store attachment"})
			return
		}
		empty := ""
		upd.File = &empty
		upd.FileKey = &key
	}

	lr, err := h.store.UpdateLeaveRequest(r.Context(), id, upd)
	if err != nil {
		if err == storage.ErrNotFound {
			writeJSON(w, http.StatusNotFound, "Request not found")
			return
		}
		log.Printf("[leave] update %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	h.publish(eventbus.EventRequestUpdated, lr)
	writeJSON(w, http.StatusOK, lr)
}

// Delete 处理 DELETE /api/leave/deleteLeaveRequest/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	lr, err := h.store.GetLeaveRequest(r.Context(), id)
	if err != nil {
		log.Printf("[leave] get %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete leave request"})
		return
	}
	if lr == nil {
		writeJSON(w, http.StatusNotFound, "Request not found")
		return
	}

	if err := h.store.DeleteLeaveRequest(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			writeJSON(w, http.StatusNotFound, "Request not found")
			return
		}
		log.Printf("[leave] delete %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete leave request"})
		return
	}

	// 附件对象尽力清理，失败不影响响应
	if h.objects != nil && lr.FileKey != "" {
		if err := h.objects.Delete(r.Context(), lr.FileKey); err != nil {
			log.Printf("[leave] attachment delete error: %v", err)
		}
	}

	h.publish(eventbus.EventRequestDeleted, lr)
	writeJSON(w, http.StatusOK, "Deleted Successfully")
}

// publish 广播请假申请生命周期事件，失败仅记录日志
func (h *Handler) publish(eventType string, lr *model.LeaveRequest) {
	if h.bus == nil {
		return
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()
	event := &eventbus.Event{
		Type:      eventType,
		Kind:      eventbus.KindLeave,
		RequestID: lr.ID,
		UserID:    lr.UserID,
		Status:    lr.Status,
		Timestamp: time.Now().UTC(),
	}
	if err := h.bus.Publish(ctx, event); err != nil {
		log.Printf("[leave] publish event error: %v", err)
	}
}
