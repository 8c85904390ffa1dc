package results

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

type resultRepoPG struct{ pool *pgxpool.Pool }

func NewResultRepoPG(pool *pgxpool.Pool) Repository {
	return &resultRepoPG{pool: pool}
}

const resultCols = `id, order_id, status, created_at, updated_at`

func scanResult(row pgx.Row) (*Result, error) {
	var r Result
	err := row.Scan(&r.ID, &r.OrderID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &r, err
}

func (r *resultRepoPG) Create(ctx context.Context, res *Result) error {
	res.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO result (id, order_id, status) VALUES ($1,$2,$3)`,
		res.ID, res.OrderID, res.Status)
	return err
}

func (r *resultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Result, error) {
	return scanResult(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+resultCols+` FROM result WHERE id = $1`, id))
}

func (r *resultRepoPG) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	return scanResult(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+resultCols+` FROM result WHERE order_id = $1`, orderID))
}

func (r *resultRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE result SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *resultRepoPG) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Summary, int, error) {
	var where []string
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filters.StatusGroup != "" {
		add(`r.status = ANY($%d)`, StatusGroups[filters.StatusGroup])
	}
	if filters.PatientDocument != "" {
		add(`p.document_number ILIKE '%%' || $%d || '%%'`, filters.PatientDocument)
	}
	if filters.PatientName != "" {
		add(`(p.first_name || ' ' || p.last_name) ILIKE '%%' || $%d || '%%'`, filters.PatientName)
	}
	if filters.OrderCode != "" {
		add(`o.code ILIKE '%%' || $%d || '%%'`, filters.OrderCode)
	}

	base := `
		FROM result r
		JOIN lab_order o ON o.id = r.order_id
		JOIN patient p ON p.id = o.patient_id`
	if len(where) > 0 {
		base += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`
		SELECT r.id, r.order_id, r.status, r.created_at, r.updated_at,
			o.code, p.last_name || ', ' || p.first_name, p.document_number`+
		base+`
		ORDER BY r.created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.OrderID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&s.OrderCode, &s.PatientName, &s.PatientDocument); err != nil {
			return nil, 0, err
		}
		items = append(items, &s)
	}
	return items, total, rows.Err()
}

type detailRepoPG struct{ pool *pgxpool.Pool }

func NewDetailRepoPG(pool *pgxpool.Pool) DetailRepository {
	return &detailRepoPG{pool: pool}
}

const detailCols = `id, result_id, order_detail_id, exam_id, status, created_at, updated_at`

func scanDetail(row pgx.Row) (*ResultDetail, error) {
	var d ResultDetail
	err := row.Scan(&d.ID, &d.ResultID, &d.OrderDetailID, &d.ExamID, &d.Status,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *detailRepoPG) Create(ctx context.Context, d *ResultDetail) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO result_detail (id, result_id, order_detail_id, exam_id, status)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.ResultID, d.OrderDetailID, d.ExamID, d.Status)
	return err
}

func (r *detailRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ResultDetail, error) {
	return scanDetail(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+detailCols+` FROM result_detail WHERE id = $1`, id))
}

func (r *detailRepoPG) ListByResult(ctx context.Context, resultID uuid.UUID) ([]*ResultDetail, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+detailCols+` FROM result_detail WHERE result_id = $1 ORDER BY created_at, id`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ResultDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *detailRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE result_detail SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}
