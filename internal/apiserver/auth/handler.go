package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
)

// Handler 用户注册 / 登录处理器
type Handler struct {
	cfg   Config
	users storage.UserStore
	// onSignup 注册成功后的回调（员工目录缓存失效）
	onSignup func()
}

// NewHandler 创建认证处理器
func NewHandler(cfg Config, users storage.UserStore, onSignup func()) *Handler {
	return &Handler{cfg: cfg, users: users, onSignup: onSignup}
}

// signupRequest 注册请求体
type signupRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Signup 处理 POST /api/user/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid request body"})
		return
	}

	// 必填字段校验（缺失按存储层校验失败处理，统一 500）
	if req.UserName == "" || req.Email == "" || req.Mobile == "" || req.Password == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "all fields are required"})
		return
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "invalid role: " + req.Role})
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[auth] hash password error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to process password"})
		return
	}

	user := &model.User{
		ID:           generateID("usr"),
		UserName:     req.UserName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:       req.Mobile,
		PasswordHash: hash,
		Role:         role,
		CreatedOn:    time.Now().UTC(),
	}

	if err := h.users.CreateUser(r.Context(), user); err != nil {
		log.Printf("[auth] signup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}

	if h.onSignup != nil {
		h.onSignup()
	}

	log.Printf("[auth] user registered: %s (%s)", user.UserName, user.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User added successfully"})
}

// loginRequest 登录请求体
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse 登录响应
type loginResponse struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
	Token    string `json:"token"`
	ID       string `json:"id"`
}

// Login 处理 POST /api/user/login
// 凭据无效时统一返回 401，不区分用户不存在与密码错误
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		log.Printf("[auth] login lookup error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "login failed"})
		return
	}
	if user == nil || !CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}

	token, err := GenerateToken(h.cfg, user.ID, user.Role)
	if err != nil {
		log.Printf("[auth] generate token error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "login failed"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserName: user.UserName,
		Role:     string(user.Role),
		Token:    token,
		ID:       user.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[auth] write response error: %v", err)
	}
}
