// Package auth はOAuth認証フロー、ユーザープロビジョニング、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// Profile は外部IdPから取得したユーザー情報を表す。
type Profile struct {
	Subject string // IdPが発行する安定識別子（OIDCのsub）
	Email   string
	Name    string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*Profile, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	DefaultTeam   string // 初回ログインユーザーを割り当てるチーム名
}

// AuthMetrics はログインとプロビジョニングの結果を記録する。
type AuthMetrics interface {
	RecordLogin(outcome string)
	RecordProvisioning(outcome string)
}

// Service は認証とプロビジョニングのビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	users    repository.UserRepository
	teams    repository.TeamRepository
	sessions repository.SessionRepository
	config   ServiceConfig
	metrics  AuthMetrics // nilの場合は記録しない
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	oauth OAuthProvider,
	users repository.UserRepository,
	teams repository.TeamRepository,
	sessions repository.SessionRepository,
	config ServiceConfig,
	metrics AuthMetrics,
) *Service {
	return &Service{
		oauth:    oauth,
		users:    users,
		teams:    teams,
		sessions: sessions,
		config:   config,
		metrics:  metrics,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// プロビジョニング（ユーザーの検索・作成・属性同期）が一段でも失敗した場合は
// セッションを確立せず、エラーを呼び出し元へ伝播する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.recordLogin("failure")
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	user, err := s.Provision(ctx, profile)
	if err != nil {
		s.recordLogin("failure")
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		s.recordLogin("failure")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.recordLogin("success")
	return session, nil
}

// Provision は外部プロフィールを永続的なローカルユーザーに対応付ける。
//
// 検索はsubject優先、次にemailの順で、挿入を決める前に両方のキーを評価する。
// これにより、subjectが記録される前にメールだけで登録されたユーザーや、
// IdP連携を変更したユーザーに対して二重の行が作られることはない。
//
// 既存ユーザーの場合は表示名と新たに判明したsubjectのみを同期し、
// アクセスレベルとチームは再ログインの副作用として決して変更しない。
// 新規ユーザーはメンバー権限（レベル2）と設定された既定チームで作成する。
func (s *Service) Provision(ctx context.Context, profile *Profile) (*model.User, error) {
	if profile.Email == "" {
		s.recordProvisioning("failure")
		return nil, fmt.Errorf("profile has no email")
	}

	user, err := s.users.FindBySubject(ctx, profile.Subject)
	if err != nil {
		s.recordProvisioning("failure")
		return nil, fmt.Errorf("failed to find user by subject: %w", err)
	}
	if user == nil {
		user, err = s.users.FindByEmail(ctx, profile.Email)
		if err != nil {
			s.recordProvisioning("failure")
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
	}

	now := time.Now()

	if user != nil {
		// 既存ユーザー: IdP由来の属性のみ同期する。
		changed := false
		if profile.Name != "" && user.Name != profile.Name {
			user.Name = profile.Name
			changed = true
		}
		if user.Subject == "" && profile.Subject != "" {
			user.Subject = profile.Subject
			changed = true
		}
		if changed {
			user.UpdatedAt = now
			if err := s.users.Update(ctx, user); err != nil {
				s.recordProvisioning("failure")
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		}

		s.recordProvisioning("existing")
		slog.Info("existing user logged in",
			slog.String("email", user.Email),
			slog.Int("access", int(user.Access)),
		)
		return user, nil
	}

	// 新規ユーザー: メンバー権限と既定チームで作成する。
	teamID, err := s.defaultTeamID(ctx)
	if err != nil {
		s.recordProvisioning("failure")
		return nil, err
	}

	newUser := &model.User{
		ID:        uuid.New().String(),
		Subject:   profile.Subject,
		Email:     profile.Email,
		Name:      profile.Name,
		Access:    model.AccessMember,
		TeamID:    teamID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 同一人物の並行ログインとの競合。正本を取り直す。
			existing, findErr := s.users.FindByEmail(ctx, profile.Email)
			if findErr == nil && existing != nil {
				s.recordProvisioning("existing")
				return existing, nil
			}
		}
		s.recordProvisioning("failure")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recordProvisioning("created")
	slog.Info("new user provisioned",
		slog.String("email", newUser.Email),
		slog.String("default_team", s.config.DefaultTeam),
	)

	return newUser, nil
}

func (s *Service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(outcome)
	}
}

func (s *Service) recordProvisioning(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordProvisioning(outcome)
	}
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// defaultTeamID は設定された既定チームのIDを返す。
// チームが未設定または見つからない場合は無所属（nil）とする。
func (s *Service) defaultTeamID(ctx context.Context) (*int64, error) {
	if s.config.DefaultTeam == "" {
		return nil, nil
	}

	team, err := s.teams.FindByName(ctx, s.config.DefaultTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to find default team: %w", err)
	}
	if team == nil {
		slog.Warn("default team not found, creating user without team",
			slog.String("team", s.config.DefaultTeam),
		)
		return nil, nil
	}

	id := team.ID
	return &id, nil
}

// createSession はセッションを作成し永続化する。
// セッション行にはログイン時点の識別キー（email, subject）をキャッシュとして保持する。
func (s *Service) createSession(ctx context.Context, user *model.User) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		Email:     user.Email,
		Subject:   user.Subject,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
