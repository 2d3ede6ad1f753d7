package httpapi

import (
	"net/http"

	"bloodlink/internal/service"

	"go.uber.org/zap"
)

// RequestHandler 血液请求 Handler（创建与查询为公开接口）
type RequestHandler struct {
	requestService service.RequestService
	logger         *zap.Logger
}

// NewRequestHandler 创建血液请求 Handler
func NewRequestHandler(requestService service.RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		logger:         logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/requests" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodGet:
		h.List(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Create 创建血液请求；Critical 级别触发 webhook 通知
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRequestRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.requestService.CreateRequest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// List 请求列表（status/blood_group/urgency/location 过滤）
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListRequestsRequest{
		Status:     q.Get("status"),
		BloodGroup: q.Get("blood_group"),
		Urgency:    q.Get("urgency"),
		Location:   q.Get("location"),
	}

	resp, err := h.requestService.ListRequests(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
