// Package calendar 纯日期工具：工作日判断与日期区间展开。
// 周末（周六/周日）永远不可订、不计产能和收入，这里是唯一的周末策略来源。
package calendar

import "time"

const dayLayout = "2006-01-02"

// Normalize 归一化到 UTC 零点，日记录全部以此为准
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey 日期键（YYYY-MM-DD），用于记录 ID 和缓存键
func DateKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDateKey 解析 YYYY-MM-DD
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}

// IsBusinessDay 周一至周五为工作日
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// BusinessDaysBetween 闭区间 [start, end] 内的工作日数量。
// start > end 返回 0，调用方应视为校验失败而不是交换边界
func BusinessDaysBetween(start, end time.Time) int {
	count := 0
	for d := Normalize(start); !d.After(Normalize(end)); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// BusinessDayList 闭区间内的工作日列表（升序，跳过周末）
func BusinessDayList(start, end time.Time) []time.Time {
	days := []time.Time{}
	for d := Normalize(start); !d.After(Normalize(end)); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// AllDaysBetween 闭区间内的全部日期（升序，含周末）。
// 多日预订展开日记录时必须包含周末，区间才保持连续，后续编辑 diff 才正确；
// 周末记录只是占位，统计永远不会计入
func AllDaysBetween(start, end time.Time) []time.Time {
	days := []time.Time{}
	for d := Normalize(start); !d.After(Normalize(end)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
