package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/repository"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/service"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/store"
)

const maxBodyBytes = 1 << 20

// BookingHandler 预订写路径（save / bulk-apply / discard / quick-cycle）+ 记录查询
type BookingHandler struct {
	bookings      *service.BookingService
	bookingsStore repository.BookingStore
	cache         *store.SnapshotCache // 可为 nil（无 Redis 部署）
	logger        *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, bookingsStore repository.BookingStore, cache *store.SnapshotCache, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:      bookings,
		bookingsStore: bookingsStore,
		cache:         cache,
		logger:        logger,
	}
}

type reservationPayload struct {
	DeskID     string `json:"desk_id"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
}

type saveRequest struct {
	DeskID       string              `json:"desk_id"`
	Start        string              `json:"start"`
	End          string              `json:"end"`
	Status       string              `json:"status"`
	Price        float64             `json:"price"`
	OccupantName string              `json:"occupant_name"`
	Title        string              `json:"title"`
	Currency     string              `json:"currency"`
	Existing     *reservationPayload `json:"existing,omitempty"`
}

// Save POST /planner/api/v1/bookings/save
func (h *BookingHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "invalid request body"))
		return
	}

	start, ok := parseDay(req.Start)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "start must be YYYY-MM-DD"))
		return
	}
	end, ok := parseDay(req.End)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "end must be YYYY-MM-DD"))
		return
	}

	currency := domain.Currency(req.Currency)
	if req.Currency == "" {
		currency = domain.CurrencyUSD
	}

	svcReq := service.SaveRequest{
		DeskID:       req.DeskID,
		Start:        start,
		End:          end,
		Status:       domain.Status(req.Status),
		Price:        req.Price,
		OccupantName: req.OccupantName,
		Title:        req.Title,
		Currency:     currency,
	}
	if req.Existing != nil {
		res, err := parseReservation(req.Existing)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, err.Error()))
			return
		}
		svcReq.Existing = res
	}

	if err := h.bookings.Save(ctx, svcReq); err != nil {
		h.fail(w, err)
		return
	}
	h.invalidate(r)
	writeJSON(w, http.StatusOK, Ok(true))
}

type bulkApplyRequest struct {
	DeskIDs []string `json:"desk_ids"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Status  string   `json:"status"`
}

// BulkApply POST /planner/api/v1/bookings/bulk-apply
func (h *BookingHandler) BulkApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkApplyRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "invalid request body"))
		return
	}
	start, ok := parseDay(req.Start)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "start must be YYYY-MM-DD"))
		return
	}
	end, ok := parseDay(req.End)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "end must be YYYY-MM-DD"))
		return
	}

	if err := h.bookings.BulkApply(ctx, req.DeskIDs, start, end, domain.Status(req.Status)); err != nil {
		h.fail(w, err)
		return
	}
	h.invalidate(r)
	writeJSON(w, http.StatusOK, Ok(true))
}

// Discard POST /planner/api/v1/bookings/discard
func (h *BookingHandler) Discard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reservationPayload
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "invalid request body"))
		return
	}
	res, err := parseReservation(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, err.Error()))
		return
	}

	if err := h.bookings.Discard(ctx, *res); err != nil {
		h.fail(w, err)
		return
	}
	h.invalidate(r)
	writeJSON(w, http.StatusOK, Ok(true))
}

type quickCycleRequest struct {
	DeskID string `json:"desk_id"`
	Day    string `json:"day"`
}

// QuickCycle POST /planner/api/v1/bookings/quick-cycle
func (h *BookingHandler) QuickCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req quickCycleRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "invalid request body"))
		return
	}
	day, ok := parseDay(req.Day)
	if !ok {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "day must be YYYY-MM-DD"))
		return
	}

	next, err := h.bookings.QuickCycle(ctx, req.DeskID, day)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.invalidate(r)
	writeJSON(w, http.StatusOK, Ok(map[string]string{"status": string(next)}))
}

// List GET /planner/api/v1/bookings?start=&end=
// 日历格子渲染用的原始日记录
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var start, end time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, ok := parseDay(s)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "start must be YYYY-MM-DD"))
			return
		}
		start = t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, ok := parseDay(s)
		if !ok {
			writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, "end must be YYYY-MM-DD"))
			return
		}
		end = t
	}

	records, err := h.bookingsStore.GetAll(ctx, start, end)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(toRecordViews(records)))
}

// recordView 日记录的线格式（日期用 YYYY-MM-DD）
type recordView struct {
	ID           string  `json:"id"`
	DeskID       string  `json:"desk_id"`
	Day          string  `json:"day"`
	RangeStart   string  `json:"range_start"`
	RangeEnd     string  `json:"range_end"`
	Status       string  `json:"status"`
	OccupantName string  `json:"occupant_name,omitempty"`
	Title        string  `json:"title,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Currency     string  `json:"currency,omitempty"`
}

func toRecordViews(records []domain.BookingRecord) []recordView {
	out := make([]recordView, 0, len(records))
	for _, rec := range records {
		out = append(out, recordView{
			ID:           rec.ID,
			DeskID:       rec.DeskID,
			Day:          calendar.DateKey(rec.Day),
			RangeStart:   calendar.DateKey(rec.RangeStart),
			RangeEnd:     calendar.DateKey(rec.RangeEnd),
			Status:       string(rec.Status),
			OccupantName: rec.OccupantName,
			Title:        rec.Title,
			Price:        rec.Price,
			Currency:     string(rec.Currency),
		})
	}
	return out
}

func parseReservation(p *reservationPayload) (*domain.Reservation, error) {
	start, ok := parseDay(p.RangeStart)
	if !ok {
		return nil, errors.New("range_start must be YYYY-MM-DD")
	}
	end, ok := parseDay(p.RangeEnd)
	if !ok {
		return nil, errors.New("range_end must be YYYY-MM-DD")
	}
	return &domain.Reservation{DeskID: p.DeskID, RangeStart: start, RangeEnd: end}, nil
}

// fail 错误分级：校验 400、冲突 409（message 按行列出全部冲突日）、其余 500
func (h *BookingHandler) fail(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, Fail(ResultBadRequest, vErr.Error()))
		return
	}
	var cErr *service.ConflictError
	if errors.As(err, &cErr) {
		writeJSON(w, http.StatusConflict, Fail(ResultConflict, cErr.Error()))
		return
	}
	h.logger.Error("booking operation failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail(ResultError, "internal error"))
}

func (h *BookingHandler) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
}
