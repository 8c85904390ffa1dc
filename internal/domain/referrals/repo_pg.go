package referrals

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

type referralRepoPG struct{ pool *pgxpool.Pool }

func NewReferralRepoPG(pool *pgxpool.Pool) Repository {
	return &referralRepoPG{pool: pool}
}

func (r *referralRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const referralCols = `id, business_name, document_number, phone_number, email, address,
	price_list_id, is_active, created_at, updated_at`

func scanReferral(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.BusinessName, &ref.DocumentNumber, &ref.PhoneNumber,
		&ref.Email, &ref.Address, &ref.PriceListID, &ref.IsActive, &ref.CreatedAt, &ref.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &ref, err
}

func (r *referralRepoPG) Create(ctx context.Context, ref *Referral) error {
	ref.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referral (id, business_name, document_number, phone_number, email, address,
			price_list_id, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ref.ID, ref.BusinessName, ref.DocumentNumber, ref.PhoneNumber, ref.Email, ref.Address,
		ref.PriceListID, ref.IsActive)
	return err
}

func (r *referralRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return scanReferral(r.conn(ctx).QueryRow(ctx,
		`SELECT `+referralCols+` FROM referral WHERE id = $1`, id))
}

func (r *referralRepoPG) Update(ctx context.Context, ref *Referral) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE referral SET business_name=$2, document_number=$3, phone_number=$4, email=$5,
			address=$6, price_list_id=$7, is_active=$8, updated_at=NOW()
		WHERE id = $1`,
		ref.ID, ref.BusinessName, ref.DocumentNumber, ref.PhoneNumber, ref.Email, ref.Address,
		ref.PriceListID, ref.IsActive)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *referralRepoPG) List(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM referral`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+referralCols+` FROM referral ORDER BY business_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ref)
	}
	return items, total, rows.Err()
}
