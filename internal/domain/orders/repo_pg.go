package orders

import (
	"context"
	"errors"

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

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) Repository {
	return &orderRepoPG{pool: pool}
}

const orderCols = `id, code, patient_id, referral_id, coupon_id, status, payment_method,
	observations, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Code, &o.PatientID, &o.ReferralID, &o.CouponID, &o.Status,
		&o.PaymentMethod, &o.Observations, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *orderRepoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO lab_order (id, code, patient_id, referral_id, coupon_id, status,
			payment_method, observations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.Code, o.PatientID, o.ReferralID, o.CouponID, o.Status,
		o.PaymentMethod, o.Observations)
	return err
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderCols+` FROM lab_order WHERE id = $1`, id))
}

func (r *orderRepoPG) GetByCode(ctx context.Context, code string) (*Order, error) {
	return scanOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderCols+` FROM lab_order WHERE code = $1`, code))
}

// LastCodeForPrefix locks the day's newest order row so concurrent creators
// serialize on the sequence read. The unique index on code is the backstop
// when the day is still empty and there is nothing to lock.
func (r *orderRepoPG) LastCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT code FROM lab_order
		WHERE code LIKE $1 || '-%'
		ORDER BY code DESC
		LIMIT 1
		FOR UPDATE`, prefix).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, err
}

func (r *orderRepoPG) SetPaid(ctx context.Context, id uuid.UUID, paymentMethod string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE lab_order SET status=$2, payment_method=$3, updated_at=NOW()
		WHERE id = $1`, id, StatusPaid, paymentMethod)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *orderRepoPG) SetVoided(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE lab_order SET status=$2, updated_at=NOW() WHERE id = $1`, id, StatusVoided)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *orderRepoPG) List(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM lab_order`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+orderCols+` FROM lab_order ORDER BY code DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

type detailRepoPG struct{ pool *pgxpool.Pool }

func NewDetailRepoPG(pool *pgxpool.Pool) DetailRepository {
	return &detailRepoPG{pool: pool}
}

func (r *detailRepoPG) Create(ctx context.Context, d *OrderDetail) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO order_detail (id, order_id, exam_id, price)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.OrderID, d.ExamID, d.Price)
	return err
}

func (r *detailRepoPG) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, order_id, exam_id, price, created_at
		FROM order_detail WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderDetail
	for rows.Next() {
		var d OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ExamID, &d.Price, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}
