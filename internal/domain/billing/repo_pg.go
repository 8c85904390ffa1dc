package billing

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

type companyRepoPG struct{ pool *pgxpool.Pool }

func NewCompanyRepoPG(pool *pgxpool.Pool) Repository {
	return &companyRepoPG{pool: pool}
}

func (r *companyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const companyCols = `id, business_name, document_number, phone_number, email, legal_address,
	created_at, updated_at`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.BusinessName, &c.DocumentNumber, &c.PhoneNumber, &c.Email,
		&c.LegalAddress, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *companyRepoPG) Create(ctx context.Context, c *Company) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO company (id, business_name, document_number, phone_number, email, legal_address)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.BusinessName, c.DocumentNumber, c.PhoneNumber, c.Email, c.LegalAddress)
	return err
}

func (r *companyRepoPG) Get(ctx context.Context) (*Company, error) {
	return scanCompany(r.conn(ctx).QueryRow(ctx,
		`SELECT `+companyCols+` FROM company ORDER BY created_at LIMIT 1`))
}

func (r *companyRepoPG) Update(ctx context.Context, c *Company) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE company SET business_name=$2, document_number=$3, phone_number=$4, email=$5,
			legal_address=$6, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.BusinessName, c.DocumentNumber, c.PhoneNumber, c.Email, c.LegalAddress)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}
