package domain

import (
	"fmt"
	"time"
)

// Status 日记录状态
// "available" 不会落库：没有记录即等于 available（墓碑语义）
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusAssigned  Status = "assigned"
)

// Valid 判断是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusAssigned:
		return true
	}
	return false
}

// Occupies 是否占用工位（booked/assigned 均占用）
func (s Status) Occupies() bool {
	return s == StatusBooked || s == StatusAssigned
}

// Currency 结算币种（固定枚举）
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyBGN Currency = "BGN"
	CurrencyGBP Currency = "GBP"
)

// Valid 判断是否为支持的币种
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyBGN, CurrencyGBP:
		return true
	}
	return false
}

// BookingRecord 预订日记录（对应 booking_records 表）
// 一条记录 = 一个 (desk, day)。多日预订按天展开，但 RangeStart/RangeEnd
// 保留整段区间，Price 是整段预订的总价（每条日记录冗余携带，不是日单价）
type BookingRecord struct {
	ID           string    `db:"record_id"`
	DeskID       string    `db:"desk_id"`
	Day          time.Time `db:"day"`
	RangeStart   time.Time `db:"range_start"`
	RangeEnd     time.Time `db:"range_end"`
	Status       Status    `db:"status"`
	OccupantName string    `db:"occupant_name"`
	Title        string    `db:"title"`
	Price        float64   `db:"price"`
	Currency     Currency  `db:"currency"`
	CreatedAt    time.Time `db:"created_at"`
}

// RecordID 由 (deskID, day) 确定性生成；与预订区间无关，
// 这样多日预订每天各占一条记录
func RecordID(deskID string, day time.Time) string {
	return fmt.Sprintf("%s_%s", deskID, day.Format("2006-01-02"))
}

// Reservation 预订的逻辑标识：(desk, 原始起始日) 即同一个预订
// 编辑/删除都以它为单位操作，而不是逐条日记录
type Reservation struct {
	DeskID     string    `json:"desk_id"`
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
}

// ReservationKey 收入去重用的预订标识键
func ReservationKey(deskID string, rangeStart time.Time) string {
	return deskID + "|" + rangeStart.Format("2006-01-02")
}

// SameReservation 两条日记录是否属于同一个预订
func SameReservation(a, b BookingRecord) bool {
	return a.DeskID == b.DeskID && a.RangeStart.Equal(b.RangeStart)
}
