package content

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/repository"
)

// --- モック定義 ---

type mockUnitRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Unit, error)
	createFn   func(ctx context.Context, unit *model.Unit) error
	updateFn   func(ctx context.Context, unit *model.Unit) (bool, error)
	deleteFn   func(ctx context.Context, id int64) (bool, error)
	listFn     func(ctx context.Context) ([]*model.Unit, error)
}

func (m *mockUnitRepo) FindByID(ctx context.Context, id int64) (*model.Unit, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUnitRepo) FindByName(_ context.Context, _ string) (*model.Unit, error) {
	return nil, nil
}

func (m *mockUnitRepo) Create(ctx context.Context, unit *model.Unit) error {
	if m.createFn != nil {
		return m.createFn(ctx, unit)
	}
	return nil
}

func (m *mockUnitRepo) Update(ctx context.Context, unit *model.Unit) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, unit)
	}
	return false, nil
}

func (m *mockUnitRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockUnitRepo) List(ctx context.Context) ([]*model.Unit, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockLessonRepo struct {
	findByIDFn   func(ctx context.Context, id int64) (*model.Lesson, error)
	createFn     func(ctx context.Context, lesson *model.Lesson) error
	updateFn     func(ctx context.Context, lesson *model.Lesson) (bool, error)
	deleteFn     func(ctx context.Context, id int64) (bool, error)
	listByUnitFn func(ctx context.Context, unitID int64) ([]*model.Lesson, error)
}

func (m *mockLessonRepo) FindByID(ctx context.Context, id int64) (*model.Lesson, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockLessonRepo) FindByUnitAndName(_ context.Context, _ int64, _ string) (*model.Lesson, error) {
	return nil, nil
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	if m.createFn != nil {
		return m.createFn(ctx, lesson)
	}
	return nil
}

func (m *mockLessonRepo) Update(ctx context.Context, lesson *model.Lesson) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, lesson)
	}
	return true, nil
}

func (m *mockLessonRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockLessonRepo) ListByUnit(ctx context.Context, unitID int64) ([]*model.Lesson, error) {
	if m.listByUnitFn != nil {
		return m.listByUnitFn(ctx, unitID)
	}
	return nil, nil
}

type mockComponentRepo struct {
	findByIDFn     func(ctx context.Context, id int64) (*model.LessonComponent, error)
	createFn       func(ctx context.Context, component *model.LessonComponent) error
	updateFn       func(ctx context.Context, component *model.LessonComponent) (bool, error)
	deleteFn       func(ctx context.Context, id int64) (bool, error)
	listByLessonFn func(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error)
}

func (m *mockComponentRepo) FindByID(ctx context.Context, id int64) (*model.LessonComponent, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockComponentRepo) FindByLessonAndName(_ context.Context, _ int64, _ string) (*model.LessonComponent, error) {
	return nil, nil
}

func (m *mockComponentRepo) Create(ctx context.Context, component *model.LessonComponent) error {
	if m.createFn != nil {
		return m.createFn(ctx, component)
	}
	return nil
}

func (m *mockComponentRepo) Update(ctx context.Context, component *model.LessonComponent) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, component)
	}
	return true, nil
}

func (m *mockComponentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockComponentRepo) ListByLesson(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error) {
	if m.listByLessonFn != nil {
		return m.listByLessonFn(ctx, lessonID)
	}
	return nil, nil
}

// markingSanitizer は呼び出しを可視化するテスト用サニタイザ。
type markingSanitizer struct {
	calls []string
}

func (m *markingSanitizer) Sanitize(rawHTML string) string {
	m.calls = append(m.calls, rawHTML)
	return "clean:" + rawHTML
}

var _ repository.UnitRepository = (*mockUnitRepo)(nil)
var _ repository.LessonRepository = (*mockLessonRepo)(nil)
var _ repository.LessonComponentRepository = (*mockComponentRepo)(nil)
var _ Sanitizer = (*markingSanitizer)(nil)

func existingUnit(id int64) *mockUnitRepo {
	return &mockUnitRepo{
		findByIDFn: func(_ context.Context, gotID int64) (*model.Unit, error) {
			if gotID == id {
				return &model.Unit{ID: id, Name: "基礎"}, nil
			}
			return nil, nil
		},
	}
}

func existingLesson(id int64) *mockLessonRepo {
	return &mockLessonRepo{
		findByIDFn: func(_ context.Context, gotID int64) (*model.Lesson, error) {
			if gotID == id {
				return &model.Lesson{ID: id, Name: "ギア比", UnitID: 1}, nil
			}
			return nil, nil
		},
	}
}

func newTestService(units *mockUnitRepo, lessons *mockLessonRepo, components *mockComponentRepo, sanitizer Sanitizer) *Service {
	if units == nil {
		units = &mockUnitRepo{}
	}
	if lessons == nil {
		lessons = &mockLessonRepo{}
	}
	if components == nil {
		components = &mockComponentRepo{}
	}
	if sanitizer == nil {
		sanitizer = &markingSanitizer{}
	}
	return NewService(units, lessons, components, sanitizer)
}

// --- 単元 ---

func TestCreateUnit_DuplicateName_AlreadyExists(t *testing.T) {
	units := &mockUnitRepo{
		createFn: func(context.Context, *model.Unit) error {
			return repository.ErrDuplicate
		},
	}
	svc := newTestService(units, nil, nil, nil)

	_, err := svc.CreateUnit(context.Background(), "基礎")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAlreadyExists {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestCreateUnit_EmptyName_ValidationError(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.CreateUnit(context.Background(), "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteUnit_NotFound(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	err := svc.DeleteUnit(context.Background(), 99)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnitNotFound {
		t.Errorf("expected unit-not-found error, got %v", err)
	}
}

// --- レッスン ---

func TestCreateLesson_Success(t *testing.T) {
	lessons := &mockLessonRepo{
		createFn: func(_ context.Context, lesson *model.Lesson) error {
			lesson.ID = 5
			return nil
		},
	}
	svc := newTestService(existingUnit(1), lessons, nil, nil)

	lesson, err := svc.CreateLesson(context.Background(), CreateLessonParams{
		UnitID: 1,
		Name:   "ギア比",
		Kind:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.ID != 5 || lesson.UnitID != 1 {
		t.Errorf("unexpected lesson: %+v", lesson)
	}
}

// 親の単元が存在しない場合は書き込まずに失敗する。
func TestCreateLesson_UnknownUnit_Rejected(t *testing.T) {
	lessons := &mockLessonRepo{
		createFn: func(context.Context, *model.Lesson) error {
			t.Fatal("missing parent must not reach the store")
			return nil
		},
	}
	svc := newTestService(&mockUnitRepo{}, lessons, nil, nil)

	_, err := svc.CreateLesson(context.Background(), CreateLessonParams{UnitID: 42, Name: "ギア比"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnitNotFound {
		t.Errorf("expected unit-not-found error, got %v", err)
	}
}

func TestCreateLesson_DuplicateWithinUnit_AlreadyExists(t *testing.T) {
	lessons := &mockLessonRepo{
		createFn: func(context.Context, *model.Lesson) error {
			return repository.ErrDuplicate
		},
	}
	svc := newTestService(existingUnit(1), lessons, nil, nil)

	_, err := svc.CreateLesson(context.Background(), CreateLessonParams{UnitID: 1, Name: "ギア比"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAlreadyExists {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestUpdateLesson_PartialUpdate(t *testing.T) {
	var saved *model.Lesson
	lessons := existingLesson(5)
	lessons.updateFn = func(_ context.Context, lesson *model.Lesson) (bool, error) {
		saved = lesson
		return true, nil
	}
	svc := newTestService(nil, lessons, nil, nil)

	kind := 2
	lesson, err := svc.UpdateLesson(context.Background(), 5, UpdateLessonParams{Kind: &kind})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Kind != 2 {
		t.Errorf("kind should be updated, got %d", lesson.Kind)
	}
	if lesson.Name != "ギア比" {
		t.Errorf("unspecified fields must not change, got %q", lesson.Name)
	}
	if saved == nil {
		t.Error("update should be persisted")
	}
}

func TestListLessons_UnknownUnit_Rejected(t *testing.T) {
	svc := newTestService(&mockUnitRepo{}, nil, nil, nil)

	_, err := svc.ListLessons(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnitNotFound {
		t.Errorf("expected unit-not-found error, got %v", err)
	}
}

// --- 教材要素 ---

// コンテンツは保存前に必ずサニタイズを通る。
func TestCreateComponent_SanitizesContentBeforeSave(t *testing.T) {
	sanitizer := &markingSanitizer{}
	var saved *model.LessonComponent
	components := &mockComponentRepo{
		createFn: func(_ context.Context, component *model.LessonComponent) error {
			saved = component
			return nil
		},
	}
	svc := newTestService(nil, existingLesson(5), components, sanitizer)

	_, err := svc.CreateComponent(context.Background(), CreateComponentParams{
		LessonID: 5,
		Name:     "説明",
		Content:  "<p>hello</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sanitizer.calls) != 1 {
		t.Fatalf("sanitizer should be called once, got %d", len(sanitizer.calls))
	}
	if saved == nil || !strings.HasPrefix(saved.Content, "clean:") {
		t.Errorf("sanitized content should be persisted, got %+v", saved)
	}
}

func TestCreateComponent_UnknownLesson_Rejected(t *testing.T) {
	svc := newTestService(nil, &mockLessonRepo{}, nil, nil)

	_, err := svc.CreateComponent(context.Background(), CreateComponentParams{LessonID: 42, Name: "説明"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLessonNotFound {
		t.Errorf("expected lesson-not-found error, got %v", err)
	}
}

func TestUpdateComponent_ResanitizesContent(t *testing.T) {
	sanitizer := &markingSanitizer{}
	components := &mockComponentRepo{
		findByIDFn: func(context.Context, int64) (*model.LessonComponent, error) {
			return &model.LessonComponent{ID: 7, Name: "説明", Content: "clean:old", LessonID: 5}, nil
		},
	}
	svc := newTestService(nil, nil, components, sanitizer)

	content := "<script>alert(1)</script>"
	component, err := svc.UpdateComponent(context.Background(), 7, UpdateComponentParams{Content: &content})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sanitizer.calls) != 1 || sanitizer.calls[0] != content {
		t.Errorf("updated content should pass through the sanitizer, calls=%v", sanitizer.calls)
	}
	if component.Content != "clean:"+content {
		t.Errorf("unexpected content: %q", component.Content)
	}
}

// Contentを変更しない更新ではサニタイザを呼ばない。
func TestUpdateComponent_NoContentChange_SkipsSanitizer(t *testing.T) {
	sanitizer := &markingSanitizer{}
	components := &mockComponentRepo{
		findByIDFn: func(context.Context, int64) (*model.LessonComponent, error) {
			return &model.LessonComponent{ID: 7, Name: "説明", LessonID: 5}, nil
		},
	}
	svc := newTestService(nil, nil, components, sanitizer)

	name := "新しい名前"
	if _, err := svc.UpdateComponent(context.Background(), 7, UpdateComponentParams{Name: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sanitizer.calls) != 0 {
		t.Errorf("sanitizer should not run without content change, calls=%v", sanitizer.calls)
	}
}

func TestGetComponent_NotFound(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	_, err := svc.GetComponent(context.Background(), 99)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeComponentNotFound {
		t.Errorf("expected component-not-found error, got %v", err)
	}
}

func TestListComponents_UnknownLesson_Rejected(t *testing.T) {
	svc := newTestService(nil, &mockLessonRepo{}, nil, nil)

	_, err := svc.ListComponents(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeLessonNotFound {
		t.Errorf("expected lesson-not-found error, got %v", err)
	}
}
