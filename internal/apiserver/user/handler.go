// Package user 员工目录查询
package user

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"leavedesk/internal/apiserver/listquery"
	"leavedesk/internal/shared/cache"
	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
)

// defaultLimit 员工目录默认每页条数
const defaultLimit = 10

// cachePrefix 员工目录缓存键前缀
const cachePrefix = "employees:"

// cacheTTL 目录缓存有效期
const cacheTTL = 5 * time.Minute

// Handler 员工目录处理器
type Handler struct {
	users storage.UserStore
	cache cache.Cache
}

// NewHandler 创建员工目录处理器
func NewHandler(users storage.UserStore, c cache.Cache) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Handler{users: users, cache: c}
}

// pagination 员工目录分页块
type pagination struct {
	CurrentPage    int `json:"currentPage"`
	TotalPages     int `json:"totalPages"`
	TotalEmployees int `json:"totalEmployees"`
}

// employeesResponse 员工目录响应
type employeesResponse struct {
	Employees  []*model.User `json:"employees"`
	Pagination pagination    `json:"pagination"`
}

// GetAllEmployees 处理 GET /api/user/getAllEmployees
//
// search 同时匹配 userName 与 email（不区分大小写），
// 结果按 userName 升序，默认每页 10 条。
func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	p := listquery.Parse(r, defaultLimit)

	// 先查缓存
	cacheKey := fmt.Sprintf("%ssearch=%s:page=%d:limit=%d", cachePrefix, p.Search, p.Page, p.Limit)
	if data, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	filter := storage.EmployeeFilter{
		Search: p.Search,
		Limit:  p.Limit,
		Offset: p.Offset(),
	}
	employees, total, err := h.users.ListEmployees(r.Context(), filter)
	if err != nil {
		log.Printf("[user] list employees error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch employees"})
		return
	}
	if employees == nil {
		employees = []*model.User{}
	}

	resp := employeesResponse{
		Employees: employees,
		Pagination: pagination{
			CurrentPage:    p.Page,
			TotalPages:     listquery.TotalPagesFloorOne(total, p.Limit),
			TotalEmployees: total,
		},
	}

	// 写响应并回填缓存
	body, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[user] marshal response error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch employees"})
		return
	}
	if err := h.cache.Set(r.Context(), cacheKey, body, cacheTTL); err != nil {
		log.Printf("[user] cache set error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// InvalidateCache 使员工目录缓存失效（新用户注册后调用）
func (h *Handler) InvalidateCache() {
	ctx, cancel := contextWithTimeout()
	defer cancel()
	if err := h.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		log.Printf("[user] cache invalidate error: %v", err)
	}
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[user] write response error: %v", err)
	}
}
