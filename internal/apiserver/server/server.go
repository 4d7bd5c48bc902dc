// Package server HTTP 路由装配与横切中间件
package server

import (
	"encoding/json"
	"net/http"

	"leavedesk/internal/apiserver/auth"
	"leavedesk/internal/apiserver/leave"
	"leavedesk/internal/apiserver/user"
	"leavedesk/internal/apiserver/wfh"
	"leavedesk/internal/config"
	"leavedesk/internal/shared/cache"
	"leavedesk/internal/shared/eventbus"
	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/objstore"
	"leavedesk/internal/shared/storage"
)

// Server API 服务器：装配各 feature 处理器与中间件
type Server struct {
	cfg     *config.Config
	authCfg auth.Config
	metrics *Metrics

	authHandler  *auth.Handler
	userHandler  *user.Handler
	leaveHandler *leave.Handler
	wfhHandler   *wfh.Handler
	gateway      *EventGateway
}

// New 创建 API 服务器
// objects 为 nil 时附件走内嵌 base64 路径
func New(cfg *config.Config, store storage.PersistentStore, c cache.Cache, bus eventbus.Bus, objects *objstore.Client) *Server {
	authCfg := auth.Config{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	metrics := NewMetrics()

	userHandler := user.NewHandler(store, c)
	s := &Server{
		cfg:          cfg,
		authCfg:      authCfg,
		metrics:      metrics,
		authHandler:  auth.NewHandler(authCfg, store, userHandler.InvalidateCache),
		userHandler:  userHandler,
		leaveHandler: leave.NewHandler(store, store, bus, objects),
		wfhHandler:   wfh.NewHandler(store, store, bus),
		gateway:      NewEventGateway(authCfg, bus, cfg.AllowedOrigin, metrics),
	}
	return s
}

// Gateway 返回 WebSocket 事件网关（由 main 启动其广播循环）
func (s *Server) Gateway() *EventGateway {
	return s.gateway
}

// Router 构建完整路由表
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	// 用户
	mux.HandleFunc("POST /api/user/signup", s.authHandler.Signup)
	mux.HandleFunc("POST /api/user/login", s.authHandler.Login)
	mux.HandleFunc("GET /api/user/getAllEmployees", auth.ManagerOnly(s.userHandler.GetAllEmployees))

	// 请假申请
	mux.HandleFunc("POST /api/leave/addLeaveRequest", s.anyRole(s.leaveHandler.Apply))
	mux.HandleFunc("GET /api/leave/getAllLeaveRequests", auth.ManagerOnly(s.leaveHandler.GetAll))
	mux.HandleFunc("GET /api/leave/getLeaveRequestById/{id}", s.anyRole(s.leaveHandler.GetByID))
	mux.HandleFunc("GET /api/leave/getLeaveRequestByUserId/{userId}", s.anyRole(s.leaveHandler.GetByUserID))
	mux.HandleFunc("PUT /api/leave/updateLeaveRequest/{id}", s.anyRole(s.leaveHandler.Update))
	mux.HandleFunc("DELETE /api/leave/deleteLeaveRequest/{id}", s.anyRole(s.leaveHandler.Delete))
	mux.HandleFunc("GET /api/leave/getLeaveAttachment/{id}", s.anyRole(s.leaveHandler.GetAttachment))

	// 居家办公申请
	mux.HandleFunc("POST /api/wfh-requests/addWfhRequest", s.anyRole(s.wfhHandler.Apply))
	mux.HandleFunc("GET /api/wfh-requests/getAllWfhRequests", auth.ManagerOnly(s.wfhHandler.GetAll))
	mux.HandleFunc("GET /api/wfh-requests/getWfhRequestById/{id}", s.anyRole(s.wfhHandler.GetByID))
	mux.HandleFunc("GET /api/wfh-requests/user/{userId}", s.anyRole(s.wfhHandler.GetByUserID))
	mux.HandleFunc("PUT /api/wfh-requests/updateWfhRequest/{id}", s.anyRole(s.wfhHandler.Update))
	mux.HandleFunc("DELETE /api/wfh-requests/deleteWfhRequest/{id}", s.anyRole(s.wfhHandler.Delete))

	// 运维端点
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws/notifications", s.gateway.HandleWS)

	return mux
}

// Handler 返回套上全部中间件的根处理器
// 顺序：metrics → CORS → 请求体限制 → JWT 认证 → 路由
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = auth.Middleware(s.authCfg)(h)
	h = s.bodyLimitMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.metrics.Middleware(h)
	return h
}

// anyRole 员工与管理员均可访问的路由包装
func (s *Server) anyRole(next http.HandlerFunc) http.HandlerFunc {
	return auth.RequireRoles(next, model.RoleEmployee, model.RoleManager)
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// corsMiddleware 仅放行配置的前端来源
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == s.cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bodyLimitMiddleware 限制请求体大小（附件随请求体内嵌上传）
func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.cfg.BodyLimit)
		}
		next.ServeHTTP(w, r)
	})
}
