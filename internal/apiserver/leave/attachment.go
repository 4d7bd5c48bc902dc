package leave

import (
	"encoding/base64"
	"io"
	"log"
	"net/http"
	"strings"
)

// GetAttachment 处理 GET /api/leave/getLeaveAttachment/{id}
//
// 附件外置时直接从对象存储流式下载，内嵌时解码 base64 后输出，
// 均以原始 Content-Type 返回字节流。
func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lr, err := h.store.GetLeaveRequest(r.Context(), id)
	if err != nil {
		log.Printf("[leave] get %s error: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to fetch attachment"})
		return
	}
	if lr == nil {
		writeJSON(w, http.StatusNotFound, "Request not found")
		return
	}

	// 外置附件
	if h.objects != nil && lr.FileKey != "" {
		obj, contentType, err := h.objects.Download(r.Context(), lr.FileKey)
		if err != nil {
			log.Printf("[leave] attachment download error: %v", err)
			writeJSON(w, http.StatusNotFound, "Request not found")
			return
		}
		defer obj.Close()
		w.Header().Set("Content-Type", contentType)
		if lr.FileName != "" {
			w.Header().Set("Content-Disposition", `attachment; filename="`+lr.FileName+`"`)
		}
		if _, err := io.Copy(w, obj); err != nil {
			log.Printf("[leave] attachment stream error: %v", err)
		}
		return
	}

	// 内嵌附件
	if lr.File == "" {
		writeJSON(w, http.StatusNotFound, "Request not found")
		return
	}
	contentType, raw, err := decodeDataURL(lr.File)
	if err != nil {
		log.Printf("[leave] attachment decode error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to decode attachment"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	if lr.FileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+lr.FileName+`"`)
	}
	w.Write(raw)
}

// decodeDataURL 解析 "data:<type>;base64,<payload>" 形式的附件
// 无前缀时按 application/octet-stream 处理
func decodeDataURL(dataURL string) (string, []byte, error) {
	contentType := "application/octet-stream"
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		rest := strings.TrimPrefix(dataURL, "data:")
		if semi := strings.Index(rest, ";base64,"); semi >= 0 {
			if rest[:semi] != "" {
				contentType = rest[:semi]
			}
			payload = rest[semi+len(";base64,"):]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return contentType, raw, nil
}
