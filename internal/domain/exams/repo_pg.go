package exams

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librelims/lims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

const examCols = `id, code, name, description, price, category_id, has_components,
	is_active, created_at, updated_at`

func scanExam(row pgx.Row) (*Exam, error) {
	var e Exam
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Description, &e.Price, &e.CategoryID,
		&e.HasComponents, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func collectExams(rows pgx.Rows) ([]*Exam, error) {
	defer rows.Close()
	var items []*Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

type examRepoPG struct{ pool *pgxpool.Pool }

func NewExamRepoPG(pool *pgxpool.Pool) Repository {
	return &examRepoPG{pool: pool}
}

func (r *examRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

func (r *examRepoPG) Create(ctx context.Context, e *Exam) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO exam (id, code, name, description, price, category_id, has_components, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.Code, e.Name, e.Description, e.Price, e.CategoryID, e.HasComponents, e.IsActive)
	return err
}

func (r *examRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return scanExam(r.conn(ctx).QueryRow(ctx, `SELECT `+examCols+` FROM exam WHERE id = $1`, id))
}

func (r *examRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Exam, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+examCols+` FROM exam WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

func (r *examRepoPG) GetByCode(ctx context.Context, code string) (*Exam, error) {
	return scanExam(r.conn(ctx).QueryRow(ctx, `SELECT `+examCols+` FROM exam WHERE code = $1`, code))
}

func (r *examRepoPG) Update(ctx context.Context, e *Exam) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE exam SET code=$2, name=$3, description=$4, price=$5, category_id=$6,
			has_components=$7, is_active=$8, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Code, e.Name, e.Description, e.Price, e.CategoryID, e.HasComponents, e.IsActive)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *examRepoPG) List(ctx context.Context, nameFilter string, limit, offset int) ([]*Exam, int, error) {
	where := ""
	args := []interface{}{}
	if nameFilter != "" {
		where = ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, nameFilter)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM exam`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`SELECT `+examCols+` FROM exam`+where+` ORDER BY code LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectExams(rows)
	return items, total, err
}

func (r *examRepoPG) Search(ctx context.Context, query string, limit int) ([]*Exam, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+examCols+` FROM exam
		WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

func (r *examRepoPG) MaxCodeNumber(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(SUBSTRING(code FROM 3)::int), 0)
		FROM exam
		WHERE code ~ '^EX[0-9]+$'`).Scan(&n)
	return n, err
}

func (r *examRepoPG) ListNonPanels(ctx context.Context) ([]*Exam, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+examCols+` FROM exam WHERE has_components = false AND is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

type componentRepoPG struct{ pool *pgxpool.Pool }

func NewComponentRepoPG(pool *pgxpool.Pool) ComponentRepository {
	return &componentRepoPG{pool: pool}
}

func (r *componentRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

func (r *componentRepoPG) ComponentsOf(ctx context.Context, parentID uuid.UUID) ([]*Exam, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.code, e.name, e.description, e.price, e.category_id, e.has_components,
			e.is_active, e.created_at, e.updated_at
		FROM exam_component c
		JOIN exam e ON e.id = c.component_exam_id
		WHERE c.parent_exam_id = $1
		ORDER BY c.display_order, c.id`, parentID)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

func (r *componentRepoPG) ComponentIDsOf(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT component_exam_id FROM exam_component
		WHERE parent_exam_id = $1
		ORDER BY display_order, id`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *componentRepoPG) Replace(ctx context.Context, parentID uuid.UUID, componentIDs []uuid.UUID) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM exam_component WHERE parent_exam_id = $1`, parentID); err != nil {
		return err
	}
	for i, id := range componentIDs {
		if _, err := c.Exec(ctx, `
			INSERT INTO exam_component (id, parent_exam_id, component_exam_id, display_order)
			VALUES ($1,$2,$3,$4)`,
			uuid.New(), parentID, id, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *componentRepoPG) IsComponent(ctx context.Context, examID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_component WHERE component_exam_id = $1)`, examID).Scan(&exists)
	return exists, err
}

func (r *componentRepoPG) HasComponents(ctx context.Context, parentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_component WHERE parent_exam_id = $1)`, parentID).Scan(&exists)
	return exists, err
}

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepoPG{pool: pool}
}

func (r *categoryRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

func scanCategory(row pgx.Row) (*ExamCategory, error) {
	var c ExamCategory
	err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *ExamCategory) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO exam_category (id, name) VALUES ($1,$2)`, c.ID, c.Name)
	return err
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ExamCategory, error) {
	return scanCategory(r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM exam_category WHERE id = $1`, id))
}

func (r *categoryRepoPG) List(ctx context.Context) ([]*ExamCategory, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, created_at, updated_at FROM exam_category ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ExamCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *categoryRepoPG) Update(ctx context.Context, c *ExamCategory) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE exam_category SET name=$2, updated_at=NOW() WHERE id = $1`, c.ID, c.Name)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}
