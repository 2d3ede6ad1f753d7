package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAPIRoutes 注册全部业务路由
func (r *Router) RegisterAPIRoutes(
	auth *AuthHandler,
	donors *DonorHandler,
	requests *RequestHandler,
	monitor *MonitorHandler,
	admin *AdminHandler,
) {
	// auth
	r.HandleHandler("/api/v1/auth/", auth)

	// donors: register / search / me
	r.HandleHandler("/api/v1/donors/", donors)
	r.HandleHandler("/api/v1/search", donors)
	r.HandleHandler("/api/v1/me", donors)
	r.HandleHandler("/api/v1/me/", donors)

	// blood requests
	r.HandleHandler("/api/v1/requests", requests)

	// requester monitor view
	r.HandleHandler("/api/v1/monitor", monitor)

	// admin surface
	r.HandleHandler("/admin/api/v1/", admin)

	// liveness
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}
