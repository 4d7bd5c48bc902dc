// Package wfh 居家办公申请的增删改查
package wfh

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"leavedesk/internal/apiserver/auth"
	"leavedesk/internal/apiserver/listquery"
	"leavedesk/internal/shared/eventbus"
	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
)

// defaultLimit 居家办公列表默认每页条数
const defaultLimit = 5

// Handler 居家办公申请处理器
type Handler struct {
	store storage.WfhStore
	users storage.UserStore
	bus   eventbus.Bus
}

// NewHandler 创建居家办公申请处理器
func NewHandler(store storage.WfhStore, users storage.UserStore, bus eventbus.Bus) *Handler {
	return &Handler{store: store, users: users, bus: bus}
}

// applyRequest 申请请求体
type applyRequest struct {
	UserID    string    `json:"userId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
}

// Apply 处理 POST /api/wfh-requests/addWfhRequest
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

	wr := &model.WfhRequest{
		ID:        generateID("wfh"),
		UserID:    userID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		Status:    status,
		CreatedOn: time.Now().UTC(),
	}

	if err := h.store.CreateWfhRequest(r.Context(), wr); err != nil {
		log.Printf("[wfh] create error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	h.publish(eventbus.EventRequestCreated, wr)
	writeJSON(w, http.StatusOK, wr)
}

// GetAll 处理 GET /api/wfh-requests/getAllWfhRequests
// 始终分页，默认每页 5 条
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	p := listquery.Parse(r, defaultLimit)

	items, total, err := h.store.ListWfhRequests(r.Context(), p.Filter(""))
	if err != nil {
		log.Printf("[wfh] list error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch wfh requests"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"allWfhRequests": h.populate(r.Context(), items),
		"currentPage":    p.Page,
		"totalPages":     listquery.TotalPagesFloorZero(total, p.Limit),
		"totalItems":     total,
	})
}

// GetByID 处理 GET /api/wfh-requests/getWfhRequestById/{id}
// 响应中 userId 展开为所有者摘要
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wr, err := h.store.GetWfhRequest(r.Context(), id)
	if err != nil {
		log.Printf("[wfh] get %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch wfh request"})
		return
	}
	if wr == nil {
		writeJSON(w, http.StatusNotFound, "Request not found")
		return
	}

	var ref *model.UserRef
	if owner, err := h.users.GetUserByID(r.Context(), wr.UserID); err != nil {
		log.Printf("[wfh] populate owner error: %v", err)
	} else if owner != nil {
		ref = owner.Ref()
	}
	writeJSON(w, http.StatusOK, populatedRequest{WfhRequest: wr, Owner: ref})
}

// GetByUserID 处理 GET /api/wfh-requests/user/{userId}
// 始终分页，空集 totalPages 为 0
func (h *Handler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	p := listquery.Parse(r, defaultLimit)

	items, total, err := h.store.ListWfhRequests(r.Context(), p.Filter(userID))
	if err != nil {
		log.Printf("[wfh] list by user %s error: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch wfh requests"})
		return
	}
	if items == nil {
		items = []*model.WfhRequest{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wfhRequests": items,
		"currentPage": p.Page,
		"totalPages":  listquery.TotalPagesFloorZero(total, p.Limit),
		"totalItems":  total,
	})
}

// updateRequest 更新请求体，未出现的字段不修改
type updateRequest struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Reason    *string    `json:"reason"`
	Status    *string    `json:"status"`
}

// Update 处理 PUT /api/wfh-requests/updateWfhRequest/{id}
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
	}
	if req.Status != nil {
		status := model.RequestStatus(*req.Status)
		if !status.Valid() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid status: " + *req.Status})
			return
		}
		upd.Status = &status
	}

	wr, err := h.store.UpdateWfhRequest(r.Context(), id, upd)
	if err != nil {
		if err == storage.ErrNotFound {
			writeJSON(w, http.StatusNotFound, "Request not found")
			return
		}
		log.Printf("[wfh] update %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	h.publish(eventbus.EventRequestUpdated, wr)
	writeJSON(w, http.StatusOK, wr)
}

// Delete 处理 DELETE /api/wfh-requests/deleteWfhRequest/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	wr, err := h.store.GetWfhRequest(r.Context(), id)
	if err != nil {
		log.Printf("[wfh] get %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete wfh request"})
		return
	}
	if wr == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
		return
	}

	if err := h.store.DeleteWfhRequest(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Request not found"})
			return
		}
		log.Printf("[wfh] delete %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to delete wfh request"})
		return
	}

	h.publish(eventbus.EventRequestDeleted, wr)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted Successfully"})
}

// publish 广播生命周期事件，失败仅记录日志
func (h *Handler) publish(eventType string, wr *model.WfhRequest) {
	if h.bus == nil {
		return
	}
	ctx, cancel := contextWithTimeout()
	defer cancel()
	event := &eventbus.Event{
		Type:      eventType,
		Kind:      eventbus.KindWfh,
		RequestID: wr.ID,
		UserID:    wr.UserID,
		Status:    wr.Status,
		Timestamp: time.Now().UTC(),
	}
	if err := h.bus.Publish(ctx, event); err != nil {
		log.Printf("[wfh] publish event error: %v", err)
	}
}
