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

// HandleHandler 支持 http.Handler 接口（用于 promhttp 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterPlannerRoutes 预订引擎路由
func (r *Router) RegisterPlannerRoutes(b *BookingHandler, rep *ReportHandler) {
	r.Handle("/planner/api/v1/bookings/save", requireMethod(http.MethodPost, b.Save))
	r.Handle("/planner/api/v1/bookings/bulk-apply", requireMethod(http.MethodPost, b.BulkApply))
	r.Handle("/planner/api/v1/bookings/discard", requireMethod(http.MethodPost, b.Discard))
	r.Handle("/planner/api/v1/bookings/quick-cycle", requireMethod(http.MethodPost, b.QuickCycle))
	r.Handle("/planner/api/v1/bookings", requireMethod(http.MethodGet, b.List))

	r.Handle("/planner/api/v1/stats", requireMethod(http.MethodGet, rep.Stats))
	r.Handle("/planner/api/v1/horizon", requireMethod(http.MethodGet, rep.Horizon))
	r.Handle("/planner/api/v1/desks", requireMethod(http.MethodGet, rep.Desks))
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}
