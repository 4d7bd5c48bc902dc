package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"leavedesk/internal/shared/model"
)

// 免认证路由白名单（前缀匹配）
var publicPrefixes = []string{
	"/api/user/signup",
	"/api/user/login",
	"/health",
	"/metrics",
	"/ws/",
}

func isPublicRoute(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware 创建 JWT 认证中间件
//
// 非公开路由要求 Authorization: Bearer <token>，验证通过后把
// AuthUser 注入 context。错误提示沿用原始接口文案，过期与无效分开。
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 公开路由：直接放行
			if isPublicRoute(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// 提取 Bearer Token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authentication failed - No token provided")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authentication failed - No token provided")
				return
			}

			// 解析 JWT
			claims, err := ParseToken(cfg, parts[1])
			if err != nil {
				log.Printf("[auth] token parse error: %v", err)
				if errors.Is(err, ErrTokenExpired) {
					writeAuthError(w, http.StatusUnauthorized, "Token expired - Please login again")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Invalid token - Please login again")
				return
			}

			role, ok := model.ParseRole(claims.Role)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token - Please login again")
				return
			}

			// 注入 auth user 到 context
			user := &AuthUser{ID: claims.Subject, Role: role}
			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), user)))
		})
	}
}

// RequireRoles 角色白名单路由包装
func RequireRoles(next http.HandlerFunc, roles ...model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil || !roleAllowed(user.Role, roles) {
			writeAuthError(w, http.StatusForbidden, "Forbidden Request. Insufficient permissions")
			return
		}
		next(w, r)
	}
}

// ManagerOnly Manager 专属路由包装（基于 Role.CanManage 能力检查）
func ManagerOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil || !user.Role.CanManage() {
			writeAuthError(w, http.StatusForbidden, "Forbidden Request. Insufficient permissions")
			return
		}
		next(w, r)
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
