package wfh

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

// populatedRequest 响应中 userId 展开为所有者摘要
type populatedRequest struct {
	*model.WfhRequest
	Owner *model.UserRef `json:"userId"`
}

// populate 批量加载请求所有者
func (h *Handler) populate(ctx context.Context, items []*model.WfhRequest) []populatedRequest {
	ids := make([]string, 0, len(items))
	for _, wr := range items {
		ids = append(ids, wr.UserID)
	}
	owners, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Printf("[wfh] populate owners error: %v", err)
		owners = nil
	}

	out := make([]populatedRequest, 0, len(items))
	for _, wr := range items {
		var ref *model.UserRef
		if owner, ok := owners[wr.UserID]; ok {
			ref = owner.Ref()
		}
		out = append(out, populatedRequest{WfhRequest: wr, Owner: ref})
	}
	return out
}

// generateID 生成带前缀的随机 ID，如 wfh-a1b2c3d4e5f6
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
		log.Printf("[wfh] write response error: %v", err)
	}
}
