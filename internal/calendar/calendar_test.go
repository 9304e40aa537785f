package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 2026-03-02 是周一
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDateKey(s)
	require.NoError(t, err)
	return d
}

func TestIsBusinessDay(t *testing.T) {
	require.True(t, IsBusinessDay(day(t, "2026-03-02")))  // Mon
	require.True(t, IsBusinessDay(day(t, "2026-03-06")))  // Fri
	require.False(t, IsBusinessDay(day(t, "2026-03-07"))) // Sat
	require.False(t, IsBusinessDay(day(t, "2026-03-08"))) // Sun
}

func TestBusinessDaysBetween(t *testing.T) {
	mon := day(t, "2026-03-02")
	fri := day(t, "2026-03-06")
	nextMon := day(t, "2026-03-09")

	require.Equal(t, 5, BusinessDaysBetween(mon, fri))
	require.Equal(t, 6, BusinessDaysBetween(mon, nextMon)) // 周末不计
	require.Equal(t, 1, BusinessDaysBetween(mon, mon))
	require.Equal(t, 0, BusinessDaysBetween(day(t, "2026-03-07"), day(t, "2026-03-08")))
	// start > end 返回 0，不交换边界
	require.Equal(t, 0, BusinessDaysBetween(fri, mon))
}

func TestBusinessDayList(t *testing.T) {
	mon := day(t, "2026-03-02")
	nextMon := day(t, "2026-03-09")

	days := BusinessDayList(mon, nextMon)
	require.Len(t, days, 6)
	require.Equal(t, day(t, "2026-03-06"), days[4])
	require.Equal(t, nextMon, days[5]) // 周六周日被跳过

	require.Empty(t, BusinessDayList(nextMon, mon))
}

func TestAllDaysBetween(t *testing.T) {
	mon := day(t, "2026-03-02")
	nextMon := day(t, "2026-03-09")

	days := AllDaysBetween(mon, nextMon)
	require.Len(t, days, 8) // 周末在内，区间保持连续
	require.Equal(t, day(t, "2026-03-07"), days[5])

	require.Empty(t, AllDaysBetween(nextMon, mon))
	require.Len(t, AllDaysBetween(mon, mon), 1)
}

func TestNormalizeAndDateKey(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	d := time.Date(2026, 3, 2, 23, 45, 0, 0, loc)
	norm := Normalize(d)
	require.Equal(t, "2026-03-02", DateKey(norm))
	require.Equal(t, time.UTC, norm.Location())
	require.Equal(t, 0, norm.Hour())
}
