package handlers

import (
	"net/http"
	"strings"
)

// ClientIP 取 X-Forwarded-For 的第一个地址，其次 X-Real-IP ，都没有时返回空
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
