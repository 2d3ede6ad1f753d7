package httpapi

import (
	"net/http"

	"bloodlink/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 登录/登出/会话校验 Handler
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 创建认证 Handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/auth/donor/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.DonorLogin(w, r)
	case "/api/v1/auth/admin/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.AdminLogin(w, r)
	case "/api/v1/auth/check":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Check(w, r)
	case "/api/v1/auth/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// DonorLogin 捐献者登录
func (h *AuthHandler) DonorLogin(w http.ResponseWriter, r *http.Request) {
	var req service.DonorLoginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.authService.DonorLogin(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// AdminLogin 管理员登录
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req service.AdminLoginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.authService.AdminLogin(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Check 会话校验 + 续期
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(h.authService, w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

// Logout 删除会话；token 不存在也返回成功（幂等）
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)
	if token == "" {
		writeJSON(w, http.StatusOK, Ok[any](nil))
		return
	}
	if err := h.authService.Logout(r.Context(), token); err != nil {
		h.logger.Warn("Logout failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}
