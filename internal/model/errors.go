// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法、遷移先を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, access, validation, conflict, content, system
	Action   string // ユーザー向け対処方法
	Redirect string // 遷移先パス。空の場合はその場に留まる。
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeLoginRequired      = "LOGIN_REQUIRED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTeamNotFound       = "TEAM_NOT_FOUND"
	ErrCodeUnitNotFound       = "UNIT_NOT_FOUND"
	ErrCodeLessonNotFound     = "LESSON_NOT_FOUND"
	ErrCodeComponentNotFound  = "COMPONENT_NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeProvisioningFailed = "PROVISIONING_FAILED"
	ErrCodeStorageFailure     = "STORAGE_FAILURE"
)

// NewLoginRequiredError は未認証アクセスのエラーを生成する。
// 認証済みだが権限が不足している場合はNewForbiddenErrorを使用すること。
// 両者は明確に区別され、決して同一のエラーに畳み込まない。
func NewLoginRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginRequired,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "Googleアカウントでログインしてください。",
		Redirect: "/auth/google/login",
	}
}

// NewForbiddenError は権限不足のエラーを生成する。
func NewForbiddenError(required AccessLevel) *APIError {
	role := "チームメンバー"
	if required >= AccessAdmin {
		role = "キャプテンまたは教員"
	}
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("この操作には%sの権限が必要です。", role),
		Category: "access",
		Action:   "権限が必要な場合はキャプテンまたは教員に連絡してください。",
		Redirect: "/",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", email),
		Category: "validation",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewTeamNotFoundError はチームが見つからない場合のエラーを生成する。
func NewTeamNotFoundError(teamID int64) *APIError {
	return &APIError{
		Code:     ErrCodeTeamNotFound,
		Message:  fmt.Sprintf("チームが見つかりません: %d", teamID),
		Category: "validation",
		Action:   "チームIDを確認してください。",
	}
}

// NewUnitNotFoundError は単元が見つからない場合のエラーを生成する。
func NewUnitNotFoundError(unitID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUnitNotFound,
		Message:  fmt.Sprintf("単元が見つかりません: %d", unitID),
		Category: "content",
		Action:   "単元IDを確認してください。",
	}
}

// NewLessonNotFoundError はレッスンが見つからない場合のエラーを生成する。
func NewLessonNotFoundError(lessonID int64) *APIError {
	return &APIError{
		Code:     ErrCodeLessonNotFound,
		Message:  fmt.Sprintf("レッスンが見つかりません: %d", lessonID),
		Category: "content",
		Action:   "レッスンIDを確認してください。",
	}
}

// NewComponentNotFoundError は教材要素が見つからない場合のエラーを生成する。
func NewComponentNotFoundError(componentID int64) *APIError {
	return &APIError{
		Code:     ErrCodeComponentNotFound,
		Message:  fmt.Sprintf("教材要素が見つかりません: %d", componentID),
		Category: "content",
		Action:   "教材要素IDを確認してください。",
	}
}

// NewAlreadyExistsError は一意制約に抵触する場合のエラーを生成する。
// kindには"ユーザー"や"チーム"など対象の種別、valueには衝突した値を渡す。
func NewAlreadyExistsError(kind, value string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyExists,
		Message:  fmt.Sprintf("%s %s は既に存在します。", kind, value),
		Category: "conflict",
		Action:   "別の名前を指定してください。",
	}
}

// NewValidationError は書き込み前の検証に失敗した場合のエラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewProvisioningFailedError はログイン時のユーザー作成・更新に失敗した場合のエラーを生成する。
// セッションは確立されず、リクエスト元は匿名のままとなる。
func NewProvisioningFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeProvisioningFailed,
		Message:  "ログイン処理に失敗しました。",
		Category: "auth",
		Action:   "しばらく待ってから再度ログインしてください。",
		Redirect: "/",
	}
}

// NewStorageFailureError は永続化層の予期しない失敗を表すエラーを生成する。
// このリクエストに対しては致命的として扱い、部分的な書き込みを仮定しない。
func NewStorageFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeStorageFailure,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
