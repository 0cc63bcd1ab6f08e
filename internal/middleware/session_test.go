package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/robosite/internal/model"
)

type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ SessionFinder = (*mockSessionFinder)(nil)

func TestSessionMiddleware_LoadsIdentityKeysFromCookie(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			if id != "sess-1" {
				t.Errorf("unexpected session lookup: %s", id)
			}
			return &model.Session{ID: "sess-1", Email: "alice@example.com", Subject: "sub-1"}, nil
		},
	}

	var got *model.SessionContext
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("session middleware must not reject, got %d", rec.Code)
	}
	if got == nil || got.Email != "alice@example.com" || got.Subject != "sub-1" {
		t.Errorf("identity keys should be loaded into the context, got %+v", got)
	}
}

func TestSessionMiddleware_NoCookie_ProceedsAnonymous(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(context.Context, string) (*model.Session, error) {
			t.Fatal("store should not be queried without a cookie")
			return nil, nil
		},
	}

	var got *model.SessionContext
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionContextFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/units", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("anonymous request must pass through, got %d", rec.Code)
	}
	if got == nil || got.HasIdentity() {
		t.Errorf("expected empty session context, got %+v", got)
	}
}

// ストア障害でもリクエストは拒否せず、匿名として通す。
func TestSessionMiddleware_StoreError_ProceedsAnonymous(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(context.Context, string) (*model.Session, error) {
			return nil, errors.New("db down")
		},
	}

	var got *model.SessionContext
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("store failure must not reject the request, got %d", rec.Code)
	}
	if got.HasIdentity() {
		t.Errorf("store failure should leave the request anonymous, got %+v", got)
	}
}

func TestSessionMiddleware_ExpiredSession_ProceedsAnonymous(t *testing.T) {
	// 期限切れのセッションはストアがnilで返す
	finder := &mockSessionFinder{}

	var got *model.SessionContext
	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/units", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got.HasIdentity() {
		t.Errorf("expired session should be treated as anonymous, got %+v", got)
	}
}

func TestSessionContextFromContext_WithoutMiddleware(t *testing.T) {
	sc := SessionContextFromContext(context.Background())
	if sc == nil || sc.HasIdentity() {
		t.Errorf("expected empty session context, got %+v", sc)
	}
}
