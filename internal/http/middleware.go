package httpapi

import (
	"net/http"

	"bloodlink/internal/service"
	"bloodlink/internal/session"
)

// writeSessionExpired code=60401 + HTTP 401，前端拦截器据此跳转登录页
func writeSessionExpired(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, Result[any]{
		Code:    ResultTokenExpired,
		Type:    "error",
		Message: "session expired or invalid",
	})
}

// requireSession 校验并续期会话；失败时已写响应，调用方直接 return
func requireSession(auth service.AuthService, w http.ResponseWriter, r *http.Request) *session.Session {
	token := sessionToken(r)
	if token == "" {
		writeSessionExpired(w)
		return nil
	}
	sess, err := auth.Check(r.Context(), token)
	if err != nil {
		writeSessionExpired(w)
		return nil
	}
	return sess
}

// requireAdmin 仅放行管理员会话
func requireAdmin(auth service.AuthService, w http.ResponseWriter, r *http.Request) *session.Session {
	sess := requireSession(auth, w, r)
	if sess == nil {
		return nil
	}
	if sess.Kind != session.KindAdmin {
		writeJSON(w, http.StatusForbidden, Fail("admin access required"))
		return nil
	}
	return sess
}

// requireDonor 仅放行捐献者会话
func requireDonor(auth service.AuthService, w http.ResponseWriter, r *http.Request) *session.Session {
	sess := requireSession(auth, w, r)
	if sess == nil {
		return nil
	}
	if sess.Kind != session.KindDonor {
		writeJSON(w, http.StatusForbidden, Fail("donor access required"))
		return nil
	}
	return sess
}
