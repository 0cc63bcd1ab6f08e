// Package content は単元・レッスン・教材要素の三階層コンテンツ管理を提供する。
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// Sanitizer は保存前のHTMLコンテンツ無害化インターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Service はコンテンツ階層のサービス層。
// 親の存在確認と名前の一意性確認を書き込み前に行う。
type Service struct {
	units      repository.UnitRepository
	lessons    repository.LessonRepository
	components repository.LessonComponentRepository
	sanitizer  Sanitizer
}

// NewService はServiceを生成する。
func NewService(
	units repository.UnitRepository,
	lessons repository.LessonRepository,
	components repository.LessonComponentRepository,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		units:      units,
		lessons:    lessons,
		components: components,
		sanitizer:  sanitizer,
	}
}

// --- 単元 ---

// CreateUnit は単元を作成する。
func (s *Service) CreateUnit(ctx context.Context, name string) (*model.Unit, error) {
	if name == "" {
		return nil, model.NewValidationError("単元名は必須です")
	}

	unit := &model.Unit{Name: name, CreatedAt: time.Now()}
	if err := s.units.Create(ctx, unit); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("単元", name)
		}
		return nil, fmt.Errorf("単元の作成に失敗しました: %w", err)
	}

	slog.Info("unit created", slog.Int64("unit_id", unit.ID), slog.String("name", unit.Name))
	return unit, nil
}

// RenameUnit は単元名を変更する。
func (s *Service) RenameUnit(ctx context.Context, id int64, name string) (*model.Unit, error) {
	if name == "" {
		return nil, model.NewValidationError("単元名は必須です")
	}

	updated, err := s.units.Update(ctx, &model.Unit{ID: id, Name: name})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("単元", name)
		}
		return nil, fmt.Errorf("単元の更新に失敗しました: %w", err)
	}
	if !updated {
		return nil, model.NewUnitNotFoundError(id)
	}

	return s.units.FindByID(ctx, id)
}

// DeleteUnit は単元を削除する。配下のレッスン・教材要素も削除される。
func (s *Service) DeleteUnit(ctx context.Context, id int64) error {
	deleted, err := s.units.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("単元の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUnitNotFoundError(id)
	}
	slog.Info("unit deleted", slog.Int64("unit_id", id))
	return nil
}

// ListUnits は全単元を返す。
func (s *Service) ListUnits(ctx context.Context) ([]*model.Unit, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("単元一覧の取得に失敗しました: %w", err)
	}
	return units, nil
}

// --- レッスン ---

// CreateLessonParams はレッスン作成の入力。
type CreateLessonParams struct {
	UnitID int64
	Name   string
	Kind   int
	Image  string
}

// CreateLesson はレッスンを作成する。親の単元が存在しない場合はエラーを返す。
func (s *Service) CreateLesson(ctx context.Context, params CreateLessonParams) (*model.Lesson, error) {
	if params.Name == "" {
		return nil, model.NewValidationError("レッスン名は必須です")
	}

	unit, err := s.units.FindByID(ctx, params.UnitID)
	if err != nil {
		return nil, fmt.Errorf("単元の取得に失敗しました: %w", err)
	}
	if unit == nil {
		return nil, model.NewUnitNotFoundError(params.UnitID)
	}

	lesson := &model.Lesson{
		Name:      params.Name,
		Kind:      params.Kind,
		Image:     params.Image,
		UnitID:    params.UnitID,
		CreatedAt: time.Now(),
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("レッスン", params.Name)
		}
		return nil, fmt.Errorf("レッスンの作成に失敗しました: %w", err)
	}

	slog.Info("lesson created",
		slog.Int64("lesson_id", lesson.ID),
		slog.Int64("unit_id", lesson.UnitID),
		slog.String("name", lesson.Name),
	)
	return lesson, nil
}

// UpdateLessonParams はレッスン更新の入力。nilのフィールドは変更しない。
type UpdateLessonParams struct {
	Name  *string
	Kind  *int
	Image *string
}

// UpdateLesson はレッスンの属性を更新する。
func (s *Service) UpdateLesson(ctx context.Context, id int64, params UpdateLessonParams) (*model.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("レッスンの取得に失敗しました: %w", err)
	}
	if lesson == nil {
		return nil, model.NewLessonNotFoundError(id)
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, model.NewValidationError("レッスン名は必須です")
		}
		lesson.Name = *params.Name
	}
	if params.Kind != nil {
		lesson.Kind = *params.Kind
	}
	if params.Image != nil {
		lesson.Image = *params.Image
	}

	if _, err := s.lessons.Update(ctx, lesson); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("レッスン", lesson.Name)
		}
		return nil, fmt.Errorf("レッスンの更新に失敗しました: %w", err)
	}

	return lesson, nil
}

// DeleteLesson はレッスンを削除する。配下の教材要素も削除される。
func (s *Service) DeleteLesson(ctx context.Context, id int64) error {
	deleted, err := s.lessons.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("レッスンの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewLessonNotFoundError(id)
	}
	slog.Info("lesson deleted", slog.Int64("lesson_id", id))
	return nil
}

// GetLesson は指定IDのレッスンを取得する。
func (s *Service) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("レッスンの取得に失敗しました: %w", err)
	}
	if lesson == nil {
		return nil, model.NewLessonNotFoundError(id)
	}
	return lesson, nil
}

// ListLessons は単元配下のレッスン一覧を返す。親の単元が存在しない場合はエラーを返す。
func (s *Service) ListLessons(ctx context.Context, unitID int64) ([]*model.Lesson, error) {
	unit, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("単元の取得に失敗しました: %w", err)
	}
	if unit == nil {
		return nil, model.NewUnitNotFoundError(unitID)
	}

	lessons, err := s.lessons.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("レッスン一覧の取得に失敗しました: %w", err)
	}
	return lessons, nil
}

// --- 教材要素 ---

// CreateComponentParams は教材要素作成の入力。
type CreateComponentParams struct {
	LessonID int64
	Name     string
	Kind     int
	Content  string
}

// CreateComponent は教材要素を作成する。
// Contentは保存前にサニタイズされる。親のレッスンが存在しない場合はエラーを返す。
func (s *Service) CreateComponent(ctx context.Context, params CreateComponentParams) (*model.LessonComponent, error) {
	if params.Name == "" {
		return nil, model.NewValidationError("教材要素名は必須です")
	}

	lesson, err := s.lessons.FindByID(ctx, params.LessonID)
	if err != nil {
		return nil, fmt.Errorf("レッスンの取得に失敗しました: %w", err)
	}
	if lesson == nil {
		return nil, model.NewLessonNotFoundError(params.LessonID)
	}

	component := &model.LessonComponent{
		Name:      params.Name,
		Kind:      params.Kind,
		Content:   s.sanitizer.Sanitize(params.Content),
		LessonID:  params.LessonID,
		CreatedAt: time.Now(),
	}
	if err := s.components.Create(ctx, component); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("教材要素", params.Name)
		}
		return nil, fmt.Errorf("教材要素の作成に失敗しました: %w", err)
	}

	slog.Info("lesson component created",
		slog.Int64("component_id", component.ID),
		slog.Int64("lesson_id", component.LessonID),
		slog.String("name", component.Name),
	)
	return component, nil
}

// UpdateComponentParams は教材要素更新の入力。nilのフィールドは変更しない。
type UpdateComponentParams struct {
	Name    *string
	Kind    *int
	Content *string
}

// UpdateComponent は教材要素の属性を更新する。Contentは保存前にサニタイズされる。
func (s *Service) UpdateComponent(ctx context.Context, id int64, params UpdateComponentParams) (*model.LessonComponent, error) {
	component, err := s.components.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("教材要素の取得に失敗しました: %w", err)
	}
	if component == nil {
		return nil, model.NewComponentNotFoundError(id)
	}

	if params.Name != nil {
		if *params.Name == "" {
			return nil, model.NewValidationError("教材要素名は必須です")
		}
		component.Name = *params.Name
	}
	if params.Kind != nil {
		component.Kind = *params.Kind
	}
	if params.Content != nil {
		component.Content = s.sanitizer.Sanitize(*params.Content)
	}

	if _, err := s.components.Update(ctx, component); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyExistsError("教材要素", component.Name)
		}
		return nil, fmt.Errorf("教材要素の更新に失敗しました: %w", err)
	}

	return component, nil
}

// DeleteComponent は教材要素を削除する。
func (s *Service) DeleteComponent(ctx context.Context, id int64) error {
	deleted, err := s.components.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("教材要素の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewComponentNotFoundError(id)
	}
	slog.Info("lesson component deleted", slog.Int64("component_id", id))
	return nil
}

// GetComponent は指定IDの教材要素を取得する。
func (s *Service) GetComponent(ctx context.Context, id int64) (*model.LessonComponent, error) {
	component, err := s.components.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("教材要素の取得に失敗しました: %w", err)
	}
	if component == nil {
		return nil, model.NewComponentNotFoundError(id)
	}
	return component, nil
}

// ListComponents はレッスン配下の教材要素一覧を返す。親のレッスンが存在しない場合はエラーを返す。
func (s *Service) ListComponents(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("レッスンの取得に失敗しました: %w", err)
	}
	if lesson == nil {
		return nil, model.NewLessonNotFoundError(lessonID)
	}

	components, err := s.components.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("教材要素一覧の取得に失敗しました: %w", err)
	}
	return components, nil
}
