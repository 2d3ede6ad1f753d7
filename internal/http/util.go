package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"bloodlink/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// sessionToken 从 Authorization: Bearer 或 X-Session-Token 取 token
func sessionToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Session-Token"))
}

// statusForKind 错误分类到 HTTP 状态码的映射
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrInvalidInput, domain.ErrInvalidBloodType,
		domain.ErrBloodGroupMismatch, domain.ErrInvalidTransition:
		return http.StatusBadRequest
	case domain.ErrDonationTooSoon:
		return http.StatusConflict
	case domain.ErrEmailTaken:
		return http.StatusConflict
	case domain.ErrDonorNotFound, domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError 领域错误带 kind 详情返回；其它错误一律 500 且不外泄内部信息
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		detail := map[string]any{"kind": string(de.Kind)}
		if de.Kind == domain.ErrDonationTooSoon {
			detail["remaining_days"] = de.RemainingDays
		}
		writeJSON(w, statusForKind(de.Kind), FailWith(de.Message, detail))
		return
	}
	writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
}
