package httpapi

import (
	"net/http"
	"strings"

	"bloodlink/internal/service"

	"go.uber.org/zap"
)

// AdminHandler 管理端 Handler：捐献者认证、请求处理、库存与捐献录入、
// 仪表盘与报表导出。所有路由要求管理员会话。
type AdminHandler struct {
	donorService     service.DonorService
	requestService   service.RequestService
	inventoryService service.InventoryService
	donationService  service.DonationService
	monitorService   service.MonitorService
	reportService    service.ReportService
	authService      service.AuthService
	logger           *zap.Logger
}

// NewAdminHandler 创建管理端 Handler
func NewAdminHandler(
	donorService service.DonorService,
	requestService service.RequestService,
	inventoryService service.InventoryService,
	donationService service.DonationService,
	monitorService service.MonitorService,
	reportService service.ReportService,
	authService service.AuthService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		donorService:     donorService,
		requestService:   requestService,
		inventoryService: inventoryService,
		donationService:  donationService,
		monitorService:   monitorService,
		reportService:    reportService,
		authService:      authService,
		logger:           logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.authService, w, r) == nil {
		return
	}

	path := r.URL.Path
	switch {
	case path == "/admin/api/v1/donors":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ListDonors(w, r)
	case path == "/admin/api/v1/donors/pending":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.PendingDonors(w, r)
	case strings.HasPrefix(path, "/admin/api/v1/donors/") && strings.HasSuffix(path, "/verify"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/admin/api/v1/donors/"), "/verify")
		h.SetVerified(w, r, id)
	case strings.HasPrefix(path, "/admin/api/v1/requests/") && strings.HasSuffix(path, "/status"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/admin/api/v1/requests/"), "/status")
		h.UpdateRequestStatus(w, r, id)
	case strings.HasPrefix(path, "/admin/api/v1/requests/"):
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(path, "/admin/api/v1/requests/")
		h.DeleteRequest(w, r, id)
	case path == "/admin/api/v1/inventory":
		switch r.Method {
		case http.MethodPost:
			h.AddUnit(w, r)
		case http.MethodGet:
			h.ListUnits(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(path, "/admin/api/v1/inventory/") && strings.HasSuffix(path, "/status"):
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/admin/api/v1/inventory/"), "/status")
		h.UpdateUnitStatus(w, r, id)
	case path == "/admin/api/v1/donations":
		switch r.Method {
		case http.MethodPost:
			h.RecordDonation(w, r)
		case http.MethodGet:
			h.ListDonations(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case path == "/admin/api/v1/dashboard":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Dashboard(w, r)
	case path == "/admin/api/v1/reports/inventory":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.InventoryReport(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListDonors 捐献者列表（verified/blood_group/location 过滤）
func (h *AdminHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListDonorsRequest{
		BloodGroup: q.Get("blood_group"),
		Location:   q.Get("location"),
	}
	switch q.Get("verified") {
	case "true":
		v := true
		req.Verified = &v
	case "false":
		v := false
		req.Verified = &v
	}

	resp, err := h.donorService.ListDonors(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// PendingDonors 待认证捐献者列表
func (h *AdminHandler) PendingDonors(w http.ResponseWriter, r *http.Request) {
	v := false
	resp, err := h.donorService.ListDonors(r.Context(), service.ListDonorsRequest{Verified: &v})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// SetVerified 认证开关
func (h *AdminHandler) SetVerified(w http.ResponseWriter, r *http.Request, donorID string) {
	var body struct {
		Verified bool `json:"verified"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.donorService.SetVerified(r.Context(), donorID, body.Verified); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"donor_id": donorID,
		"verified": body.Verified,
	}))
}

// UpdateRequestStatus 请求状态更新（pending → fulfilled | cancelled）
func (h *AdminHandler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request, requestID string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	if err := h.requestService.UpdateStatus(r.Context(), requestID, body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"request_id": requestID,
		"status":     body.Status,
	}))
}

// DeleteRequest 删除请求
func (h *AdminHandler) DeleteRequest(w http.ResponseWriter, r *http.Request, requestID string) {
	if err := h.requestService.DeleteRequest(r.Context(), requestID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

// AddUnit 手动入库
func (h *AdminHandler) AddUnit(w http.ResponseWriter, r *http.Request) {
	var req service.AddUnitRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.inventoryService.AddUnit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// ListUnits 库存列表
func (h *AdminHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListUnitsRequest{
		Status:      q.Get("status"),
		BloodGroup:  q.Get("blood_group"),
		Location:    q.Get("location"),
		ExpiredOnly: q.Get("expired_only") == "true",
	}

	resp, err := h.inventoryService.ListUnits(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// UpdateUnitStatus 库存状态流转
func (h *AdminHandler) UpdateUnitStatus(w http.ResponseWriter, r *http.Request, unitID string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.inventoryService.UpdateStatus(r.Context(), unitID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// RecordDonation 捐献录入
func (h *AdminHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	var req service.RecordDonationRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.donationService.RecordDonation(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// ListDonations 捐献历史
func (h *AdminHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListDonationsRequest{
		DonorID:    q.Get("donor_id"),
		BloodGroup: q.Get("blood_group"),
		Location:   q.Get("location"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}

	resp, err := h.donationService.ListDonations(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Dashboard 仪表盘统计
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.monitorService.DashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// InventoryReport 库存快照 .xlsx 下载
func (h *AdminHandler) InventoryReport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.reportService.InventoryReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
