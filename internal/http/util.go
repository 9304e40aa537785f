package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// parseDay 解析查询参数/请求体里的 YYYY-MM-DD
func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := calendar.ParseDateKey(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
