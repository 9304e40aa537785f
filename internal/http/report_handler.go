package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/metrics"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/service"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/store"
)

// ReportHandler 只读报表：统计、近期概览、工位清单
type ReportHandler struct {
	bookingsStore   repository.BookingStore
	desks           repository.DeskRepository
	accrual         *service.AccrualCalculator
	horizon         *service.HorizonScanner
	cache           *store.SnapshotCache // 可为 nil（无 Redis 部署）
	metrics         *metrics.Metrics     // 可为 nil（测试）
	defaultCurrency domain.Currency
	logger          *zap.Logger
	now             func() time.Time
}

func NewReportHandler(
	bookingsStore repository.BookingStore,
	desks repository.DeskRepository,
	accrual *service.AccrualCalculator,
	horizon *service.HorizonScanner,
	cache *store.SnapshotCache,
	m *metrics.Metrics,
	defaultCurrency domain.Currency,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		bookingsStore:   bookingsStore,
		desks:           desks,
		accrual:         accrual,
		horizon:         horizon,
		cache:           cache,
		metrics:         m,
		defaultCurrency: defaultCurrency,
		logger:          logger,
		now:             time.Now,
	}
}

// WithNow 注入时钟（测试用）
func (h *ReportHandler) WithNow(now func() time.Time) *ReportHandler {
	h.now = now
	return h
}

// Stats GET /planner/api/v1/stats?start=&end=&currency=
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start, ok := parseDay(r.URL.Query().Get("start"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "start must be YYYY-MM-DD"))
		return
	}
	end, ok := parseDay(r.URL.Query().Get("end"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "end must be YYYY-MM-DD"))
		return
	}
	currency := h.defaultCurrency
	if s := r.URL.Query().Get("currency"); s != "" {
		currency = domain.Currency(s)
		if !currency.Valid() {
			writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "unknown currency"))
			return
		}
	}

	cacheKey := store.StatsKey(calendar.DateKey(start), calendar.DateKey(end), string(currency))
	if h.cache != nil {
		var cached service.Stats
		if err := h.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			writeJSON(w, http.StatusOK, Ok(cached))
			return
		}
	}

	desks, err := h.desks.ListDesks(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	records, err := h.bookingsStore.GetAll(ctx, start, end)
	if err != nil {
		h.fail(w, err)
		return
	}

	stats, err := h.accrual.Compute(records, start, end, len(desks), currency)
	if err != nil {
		h.fail(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.StatsComputes.Inc()
	}
	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, cacheKey, stats); err != nil {
			h.logger.Warn("failed to cache stats snapshot", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, Ok(stats))
}

// Horizon GET /planner/api/v1/horizon
func (h *ReportHandler) Horizon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := calendar.Normalize(h.now())

	cacheKey := store.HorizonKey(calendar.DateKey(today))
	if h.cache != nil {
		var cached service.HorizonResult
		if err := h.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			writeJSON(w, http.StatusOK, Ok(cached))
			return
		}
	}

	desks, err := h.desks.ListDesks(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	result, err := h.horizon.Scan(ctx, today, desks)
	if err != nil {
		h.fail(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.HorizonScans.Inc()
	}
	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, cacheKey, result); err != nil {
			h.logger.Warn("failed to cache horizon snapshot", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

type deskView struct {
	DeskID string `json:"desk_id"`
	RoomID string `json:"room_id"`
	Label  string `json:"label"`
}

// Desks GET /planner/api/v1/desks
func (h *ReportHandler) Desks(w http.ResponseWriter, r *http.Request) {
	desks, err := h.desks.ListDesks(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]deskView, 0, len(desks))
	for _, d := range desks {
		out = append(out, deskView{DeskID: d.DeskID, RoomID: d.RoomID, Label: d.Label})
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, vErr.Error()))
		return
	}
	h.logger.Error("report request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail(ResultError, "internal error"))
}
