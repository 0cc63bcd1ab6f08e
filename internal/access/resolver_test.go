package access

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/robosite/internal/model"
)

// --- モック定義 ---

type mockUserFinder struct {
	findByEmailFn   func(ctx context.Context, email string) (*model.User, error)
	findBySubjectFn func(ctx context.Context, subject string) (*model.User, error)

	emailCalls   int
	subjectCalls int
}

func (m *mockUserFinder) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.emailCalls++
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserFinder) FindBySubject(ctx context.Context, subject string) (*model.User, error) {
	m.subjectCalls++
	if m.findBySubjectFn != nil {
		return m.findBySubjectFn(ctx, subject)
	}
	return nil, nil
}

var _ UserFinder = (*mockUserFinder)(nil)

// --- テスト ---

func TestResolve_NoIdentity_ReturnsGuest(t *testing.T) {
	finder := &mockUserFinder{}
	r := NewResolver(finder)

	user := r.Resolve(context.Background(), &model.SessionContext{})

	if !user.Anonymous() {
		t.Errorf("expected anonymous guest, got %+v", user)
	}
	if user.Access != model.AccessGuest {
		t.Errorf("expected access %d, got %d", model.AccessGuest, user.Access)
	}
	if finder.emailCalls != 0 || finder.subjectCalls != 0 {
		t.Error("store should not be queried without identity keys")
	}
}

func TestResolve_ByEmail_RefreshesFromStore(t *testing.T) {
	stored := &model.User{
		ID:     "u1",
		Email:  "alice@example.com",
		Name:   "Alice",
		Access: model.AccessAdmin,
	}
	finder := &mockUserFinder{
		findByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if email != "alice@example.com" {
				t.Errorf("unexpected email lookup: %s", email)
			}
			return stored, nil
		},
	}
	r := NewResolver(finder)

	sc := &model.SessionContext{SessionID: "s1", Email: "alice@example.com"}
	user := r.Resolve(context.Background(), sc)

	if user != stored {
		t.Error("expected the stored record to be returned")
	}
	if sc.CachedUser != stored {
		t.Error("session cache should be overwritten with the refreshed record")
	}
	if finder.subjectCalls != 0 {
		t.Error("subject lookup should not happen when email resolves")
	}
}

// 管理者が権限を降格した直後のリクエストでも、
// セッションの古い情報ではなくストアの現在値が返ること。
func TestResolve_ReturnsCurrentAccessNotCachedOne(t *testing.T) {
	demoted := &model.User{ID: "u1", Email: "bob@example.com", Access: model.AccessGuest}
	finder := &mockUserFinder{
		findByEmailFn: func(context.Context, string) (*model.User, error) {
			return demoted, nil
		},
	}
	r := NewResolver(finder)

	sc := &model.SessionContext{
		Email:      "bob@example.com",
		CachedUser: &model.User{ID: "u1", Email: "bob@example.com", Access: model.AccessAdmin},
	}
	user := r.Resolve(context.Background(), sc)

	if user.Access != model.AccessGuest {
		t.Errorf("expected refreshed access %d, got %d", model.AccessGuest, user.Access)
	}
}

func TestResolve_DeletedUser_EvictsAndReturnsGuest(t *testing.T) {
	finder := &mockUserFinder{
		findByEmailFn: func(context.Context, string) (*model.User, error) {
			return nil, nil
		},
	}
	r := NewResolver(finder)

	sc := &model.SessionContext{
		SessionID:  "s1",
		Email:      "ghost@example.com",
		Subject:    "sub-1",
		CachedUser: &model.User{Email: "ghost@example.com", Access: model.AccessAdmin},
	}
	user := r.Resolve(context.Background(), sc)

	if !user.Anonymous() {
		t.Errorf("expected guest for deleted user, got %+v", user)
	}
	if sc.HasIdentity() {
		t.Error("stale identity keys should be evicted from the session")
	}
	if sc.CachedUser != nil {
		t.Error("cached user should be evicted")
	}
}

func TestResolve_BySubject_WhenEmailAbsent(t *testing.T) {
	stored := &model.User{ID: "u2", Subject: "sub-2", Email: "carol@example.com", Access: model.AccessMember}
	finder := &mockUserFinder{
		findBySubjectFn: func(_ context.Context, subject string) (*model.User, error) {
			if subject != "sub-2" {
				t.Errorf("unexpected subject lookup: %s", subject)
			}
			return stored, nil
		},
	}
	r := NewResolver(finder)

	sc := &model.SessionContext{Subject: "sub-2"}
	user := r.Resolve(context.Background(), sc)

	if user != stored {
		t.Error("expected the stored record to be returned")
	}
	if sc.Email != "carol@example.com" {
		t.Error("session cache should pick up the email after refresh")
	}
}

func TestResolve_SubjectMiss_EvictsAndReturnsGuest(t *testing.T) {
	finder := &mockUserFinder{}
	r := NewResolver(finder)

	sc := &model.SessionContext{Subject: "gone"}
	user := r.Resolve(context.Background(), sc)

	if !user.Anonymous() {
		t.Errorf("expected guest, got %+v", user)
	}
	if sc.HasIdentity() {
		t.Error("identity keys should be evicted")
	}
}

// ストア障害は昇格方向に倒さない: エラー時は常にゲスト。
func TestResolve_StoreError_FailsClosedToGuest(t *testing.T) {
	finder := &mockUserFinder{
		findByEmailFn: func(context.Context, string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := NewResolver(finder)

	sc := &model.SessionContext{Email: "alice@example.com"}
	user := r.Resolve(context.Background(), sc)

	if !user.Anonymous() {
		t.Errorf("expected guest on store failure, got %+v", user)
	}
}
