package model

import "time"

// Unit は教材の最上位単元を表す。
type Unit struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Lesson は単元に属するレッスンを表す。
type Lesson struct {
	ID        int64
	Name      string
	Kind      int
	Image     string
	UnitID    int64
	CreatedAt time.Time
}

// LessonComponent はレッスンを構成する個々の教材要素を表す。
// ContentはサニタイズされたHTML/JSON文字列として保持する。
type LessonComponent struct {
	ID        int64
	Name      string
	Kind      int
	Content   string
	LessonID  int64
	CreatedAt time.Time
}
