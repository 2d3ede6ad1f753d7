package httpapi

import (
	"net/http"

	"bloodlink/internal/service"

	"go.uber.org/zap"
)

// MonitorHandler 请求方监控页 Handler
type MonitorHandler struct {
	monitorService service.MonitorService
	authService    service.AuthService
	logger         *zap.Logger
}

// NewMonitorHandler 创建监控 Handler
func NewMonitorHandler(monitorService service.MonitorService, authService service.AuthService, logger *zap.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		authService:    authService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *MonitorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/monitor" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Overview(w, r)
}

// Overview 登录用户按会话邮箱聚合监控视图
func (h *MonitorHandler) Overview(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(h.authService, w, r)
	if sess == nil {
		return
	}

	resp, err := h.monitorService.Overview(r.Context(), service.OverviewRequest{
		RequesterEmail: sess.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
