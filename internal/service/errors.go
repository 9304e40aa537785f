package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bodrovphone/DeskPlanner-sub000/internal/calendar"
	"github.com/bodrovphone/DeskPlanner-sub000/internal/domain"
)

// ValidationError 引擎入参校验失败：在任何存储访问之前拒绝，绝不部分应用
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Conflict 单日冲突条目
type Conflict struct {
	Day          time.Time     `json:"day"`
	OccupantName string        `json:"occupant_name,omitempty"`
	Status       domain.Status `json:"status"`
}

// ConflictError 申请的日期区间里有日子已被不兼容的预订占用。
// 携带全部冲突日（不是只有第一条），操作员需要一次看到所有冲突才能决定改区间还是换工位
type ConflictError struct {
	DeskID    string
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "booking conflict on desk %s (%d day(s)):", e.DeskID, len(e.Conflicts))
	for _, c := range e.Conflicts {
		b.WriteString("\n  - ")
		b.WriteString(calendar.DateKey(c.Day))
		if c.OccupantName != "" {
			fmt.Fprintf(&b, ": %s", c.OccupantName)
		}
		fmt.Fprintf(&b, " (%s)", c.Status)
	}
	return b.String()
}
