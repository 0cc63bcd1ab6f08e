package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/robosite/internal/model"
)

// PostgresLessonComponentRepo はPostgreSQLを使用した教材要素リポジトリ。
type PostgresLessonComponentRepo struct {
	db *sql.DB
}

// NewPostgresLessonComponentRepo はPostgresLessonComponentRepoを生成する。
func NewPostgresLessonComponentRepo(db *sql.DB) *PostgresLessonComponentRepo {
	return &PostgresLessonComponentRepo{db: db}
}

// FindByID は指定IDの教材要素を取得する。見つからない場合はnilを返す。
func (r *PostgresLessonComponentRepo) FindByID(ctx context.Context, id int64) (*model.LessonComponent, error) {
	c := &model.LessonComponent{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, content, lesson_id, created_at
		 FROM lesson_components WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Kind, &c.Content, &c.LessonID, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson component by ID: %w", err)
	}

	return c, nil
}

// FindByLessonAndName はレッスン内の教材要素を名前で検索する。見つからない場合はnilを返す。
func (r *PostgresLessonComponentRepo) FindByLessonAndName(ctx context.Context, lessonID int64, name string) (*model.LessonComponent, error) {
	c := &model.LessonComponent{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, content, lesson_id, created_at
		 FROM lesson_components WHERE lesson_id = $1 AND name = $2`,
		lessonID, name,
	).Scan(&c.ID, &c.Name, &c.Kind, &c.Content, &c.LessonID, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lesson component by name: %w", err)
	}

	return c, nil
}

// Create は教材要素を作成しIDを採番する。レッスン内の名前重複はErrDuplicateを返す。
func (r *PostgresLessonComponentRepo) Create(ctx context.Context, component *model.LessonComponent) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO lesson_components (name, kind, content, lesson_id, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		component.Name, component.Kind, component.Content, component.LessonID, component.CreatedAt,
	).Scan(&component.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lesson component %s: %w", component.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert lesson component: %w", err)
	}
	return nil
}

// Update は教材要素の属性を上書きする。対象が存在しない場合はfalseを返す。
func (r *PostgresLessonComponentRepo) Update(ctx context.Context, component *model.LessonComponent) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE lesson_components SET name = $1, kind = $2, content = $3 WHERE id = $4`,
		component.Name, component.Kind, component.Content, component.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("lesson component %s: %w", component.Name, ErrDuplicate)
		}
		return false, fmt.Errorf("failed to update lesson component: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete は教材要素を削除する。
func (r *PostgresLessonComponentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM lesson_components WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete lesson component: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListByLesson はレッスン配下の教材要素一覧をID順で返す。
func (r *PostgresLessonComponentRepo) ListByLesson(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, kind, content, lesson_id, created_at
		 FROM lesson_components WHERE lesson_id = $1 ORDER BY id`,
		lessonID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson components: %w", err)
	}
	defer rows.Close()

	var components []*model.LessonComponent
	for rows.Next() {
		c := &model.LessonComponent{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind, &c.Content, &c.LessonID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson component: %w", err)
		}
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lesson components: %w", err)
	}

	return components, nil
}

// compile-time interface check
var _ LessonComponentRepository = (*PostgresLessonComponentRepo)(nil)
