// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/robosite/internal/model"
)

// ErrDuplicate は一意制約違反を表す。
// サービス層はこのエラーをAlreadyExistsとして利用者に報告する。
var ErrDuplicate = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindBySubject は外部IdPのsubjectでユーザーを検索する。見つからない場合はnilを返す。
	FindBySubject(ctx context.Context, subject string) (*model.User, error)

	// Create はユーザーを作成する。email/subjectの重複はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの属性（name, subject, access, team_id）を上書きする。
	Update(ctx context.Context, user *model.User) error

	// DeleteByEmail は指定メールアドレスのユーザーを削除する。
	// 対象が存在しない場合はfalseを返す。
	DeleteByEmail(ctx context.Context, email string) (bool, error)

	// List は全ユーザーを返す。
	List(ctx context.Context) ([]*model.User, error)
}

// TeamRepository はチームデータの永続化インターフェース。
type TeamRepository interface {
	// FindByID は指定IDのチームを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Team, error)

	// FindByName はチーム名でチームを検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Team, error)

	// Create はチームを作成しIDを採番する。名前の重複はErrDuplicateを返す。
	Create(ctx context.Context, team *model.Team) error

	// Rename はチーム名を変更する。対象が存在しない場合はfalseを返す。
	Rename(ctx context.Context, id int64, name string) (bool, error)

	// Delete はチームを削除する。所属ユーザーのteam_idはNULLに戻る（FK ON DELETE SET NULL）。
	Delete(ctx context.Context, id int64) (bool, error)

	// List は全チームを返す。
	List(ctx context.Context) ([]*model.Team, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByEmail は指定ユーザーの全セッションを削除する。
	DeleteByEmail(ctx context.Context, email string) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// UnitRepository は単元データの永続化インターフェース。
type UnitRepository interface {
	// FindByID は指定IDの単元を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Unit, error)

	// FindByName は単元名で単元を検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Unit, error)

	// Create は単元を作成しIDを採番する。名前の重複はErrDuplicateを返す。
	Create(ctx context.Context, unit *model.Unit) error

	// Update は単元名を上書きする。対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, unit *model.Unit) (bool, error)

	// Delete は単元を削除する。配下のレッスンはCASCADE削除される。
	Delete(ctx context.Context, id int64) (bool, error)

	// List は全単元を返す。
	List(ctx context.Context) ([]*model.Unit, error)
}

// LessonRepository はレッスンデータの永続化インターフェース。
type LessonRepository interface {
	// FindByID は指定IDのレッスンを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Lesson, error)

	// FindByUnitAndName は単元内のレッスンを名前で検索する。見つからない場合はnilを返す。
	FindByUnitAndName(ctx context.Context, unitID int64, name string) (*model.Lesson, error)

	// Create はレッスンを作成しIDを採番する。単元内の名前重複はErrDuplicateを返す。
	Create(ctx context.Context, lesson *model.Lesson) error

	// Update はレッスンの属性を上書きする。対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, lesson *model.Lesson) (bool, error)

	// Delete はレッスンを削除する。配下の教材要素はCASCADE削除される。
	Delete(ctx context.Context, id int64) (bool, error)

	// ListByUnit は単元配下のレッスン一覧を返す。
	ListByUnit(ctx context.Context, unitID int64) ([]*model.Lesson, error)
}

// LessonComponentRepository は教材要素データの永続化インターフェース。
type LessonComponentRepository interface {
	// FindByID は指定IDの教材要素を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.LessonComponent, error)

	// FindByLessonAndName はレッスン内の教材要素を名前で検索する。見つからない場合はnilを返す。
	FindByLessonAndName(ctx context.Context, lessonID int64, name string) (*model.LessonComponent, error)

	// Create は教材要素を作成しIDを採番する。レッスン内の名前重複はErrDuplicateを返す。
	Create(ctx context.Context, component *model.LessonComponent) error

	// Update は教材要素の属性を上書きする。対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, component *model.LessonComponent) (bool, error)

	// Delete は教材要素を削除する。
	Delete(ctx context.Context, id int64) (bool, error)

	// ListByLesson はレッスン配下の教材要素一覧を返す。
	ListByLesson(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error)
}
