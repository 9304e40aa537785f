package domain

import "database/sql"

// Room 房间领域模型（对应 rooms 表）
type Room struct {
	RoomID   string `db:"room_id"`
	RoomName string `db:"room_name"`
}

// Desk 工位领域模型（对应 desks 表）
// 由空间开通流程创建，对预订引擎只读
type Desk struct {
	DeskID string         `db:"desk_id"`
	RoomID string         `db:"room_id"`
	Label  string         `db:"label"`
	Notes  sql.NullString `db:"notes"` // nullable
}
