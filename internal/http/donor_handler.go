package httpapi

import (
	"net/http"

	"bloodlink/internal/service"

	"go.uber.org/zap"
)

// DonorHandler 捐献者侧 Handler：注册、搜索、个人资料与捐献历史
type DonorHandler struct {
	donorService    service.DonorService
	donationService service.DonationService
	authService     service.AuthService
	logger          *zap.Logger
}

// NewDonorHandler 创建捐献者 Handler
func NewDonorHandler(
	donorService service.DonorService,
	donationService service.DonationService,
	authService service.AuthService,
	logger *zap.Logger,
) *DonorHandler {
	return &DonorHandler{
		donorService:    donorService,
		donationService: donationService,
		authService:     authService,
		logger:          logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DonorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/donors/register":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, r)
	case "/api/v1/search":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Search(w, r)
	case "/api/v1/me":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Profile(w, r)
	case "/api/v1/me/donations":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.MyDonations(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Register 捐献者注册（公开接口）
func (h *DonorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterDonorRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.donorService.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// Search 捐献者/库存搜索（公开接口）
func (h *DonorHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.SearchRequest{
		BloodGroup: q.Get("blood_group"),
		Location:   q.Get("location"),
		SearchType: q.Get("type"),
	}

	resp, err := h.donorService.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

// Profile 登录捐献者的资料（含当前资格状态）
func (h *DonorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := requireDonor(h.authService, w, r)
	if sess == nil {
		return
	}

	donor, err := h.donorService.GetDonor(r.Context(), sess.SubjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(donor))
}

// MyDonations 登录捐献者的捐献历史
func (h *DonorHandler) MyDonations(w http.ResponseWriter, r *http.Request) {
	sess := requireDonor(h.authService, w, r)
	if sess == nil {
		return
	}

	resp, err := h.donationService.ListDonations(r.Context(), service.ListDonationsRequest{
		DonorID: sess.SubjectID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
