// Package model はドメインモデルを定義する。
package model

import "time"

// AccessLevel はユーザーの権限レベルを表す。
// 全順序を持ち、上位レベルは下位レベルの操作をすべて行える。
type AccessLevel int

const (
	// AccessGuest は公開コンテンツの閲覧のみ可能なゲスト。チームには所属できない。
	AccessGuest AccessLevel = 1
	// AccessMember はチームに所属し、メンバー向けコンテンツを閲覧できる。
	AccessMember AccessLevel = 2
	// AccessAdmin はキャプテン・教員。チーム、ユーザー、教材の作成・更新・削除が可能。
	AccessAdmin AccessLevel = 3
)

// Valid はAccessLevelが定義済みの3段階のいずれかであるかを返す。
func (l AccessLevel) Valid() bool {
	return l >= AccessGuest && l <= AccessAdmin
}

// User はポータル利用ユーザーを表す。
// Emailが一意の自然キーであり、Subject（Google OAuthのsub）は
// メールのみで登録された経路では空になりうる。
type User struct {
	ID        string
	Subject   string // 外部IdPの安定識別子。未連携の場合は空。
	Email     string
	Name      string
	Access    AccessLevel
	TeamID    *int64 // 無所属（"none"）の場合はnil。
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Anonymous はユーザーが匿名ゲストであるかを返す。
func (u *User) Anonymous() bool {
	return u == nil || u.Email == ""
}

// GuestUser は匿名ゲストを表す定義済みレコードを返す。
// 権限レベル1、チーム無所属、識別子なし。
func GuestUser() *User {
	return &User{Access: AccessGuest}
}

// Team はユーザーが所属する名前付きグループを表す。
type Team struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Session はDBに永続化されたログインセッションを表す。
// EmailとSubjectはログイン時点の識別キーのキャッシュであり、
// 正本はあくまでusersテーブル側にある。
type Session struct {
	ID        string
	Email     string
	Subject   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionContext は1リクエスト分のセッション状態を明示的に受け渡す値。
// Cookieバックのセッション行から構築され、リゾルバによる
// リフレッシュ・破棄の対象となるキャッシュとして扱う。
type SessionContext struct {
	SessionID string
	Email     string
	Subject   string

	// CachedUser は直近のリフレッシュで取得したユーザーのスナップショット。
	// 権限判定には使用せず、表示用途に限る。
	CachedUser *User
}

// HasIdentity はセッションが識別キー（emailまたはsubject）を持つかを返す。
func (sc *SessionContext) HasIdentity() bool {
	return sc != nil && (sc.Email != "" || sc.Subject != "")
}

// CacheUser はリフレッシュ済みユーザーでセッションキャッシュを上書きする。
func (sc *SessionContext) CacheUser(u *User) {
	sc.Email = u.Email
	sc.Subject = u.Subject
	sc.CachedUser = u
}

// Evict は古くなった識別情報をセッションから破棄する。
func (sc *SessionContext) Evict() {
	sc.Email = ""
	sc.Subject = ""
	sc.CachedUser = nil
}
