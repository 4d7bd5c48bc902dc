package leave

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"leavedesk/internal/shared/model"
)

// populatedRequest 列表响应中 userId 展开为所有者摘要
type populatedRequest struct {
	*model.LeaveRequest
	Owner *model.UserRef `json:"userId"`
}

// populate 批量加载请求所有者并展开为 {_id, userName, email, role}
// 所有者已被删除时 userId 为 null
func (h *Handler) populate(ctx context.Context, items []*model.LeaveRequest) []populatedRequest {
	ids := make([]string, 0, len(items))
	for _, lr := range items {
		ids = append(ids, lr.UserID)
	}
	owners, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Printf("[leave] populate owners error: %v", err)
		owners = nil
	}

	out := make([]populatedRequest, 0, len(items))
	for _, lr := range items {
		var ref *model.UserRef
		if owner, ok := owners[lr.UserID]; ok {
			ref = owner.Ref()
		}
		out = append(out, populatedRequest{LeaveRequest: lr, Owner: ref})
	}
	return out
}

// generateID 生成带前缀的随机 ID，如 lr-a1b2c3d4e5f6
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[leave] write response error: %v", err)
	}
}
