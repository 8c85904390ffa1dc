package patients

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, document_type, document_number, first_name, last_name,
	birthdate, sex, phone_number, email, lead_source_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.DocumentType, &p.DocumentNumber, &p.FirstName, &p.LastName,
		&p.Birthdate, &p.Sex, &p.PhoneNumber, &p.Email, &p.LeadSourceID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, document_type, document_number, first_name, last_name,
			birthdate, sex, phone_number, email, lead_source_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.DocumentType, p.DocumentNumber, p.FirstName, p.LastName,
		p.Birthdate, p.Sex, p.PhoneNumber, p.Email, p.LeadSourceID)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByDocument(ctx context.Context, documentNumber string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE document_number = $1`, documentNumber))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET document_type=$2, document_number=$3, first_name=$4, last_name=$5,
			birthdate=$6, sex=$7, phone_number=$8, email=$9, lead_source_id=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DocumentType, p.DocumentNumber, p.FirstName, p.LastName,
		p.Birthdate, p.Sex, p.PhoneNumber, p.Email, p.LeadSourceID)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) Search(ctx context.Context, query string, limit int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE document_number ILIKE '%' || $1 || '%'
		   OR first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		ORDER BY last_name, first_name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type leadSourceRepoPG struct{ pool *pgxpool.Pool }

func NewLeadSourceRepoPG(pool *pgxpool.Pool) LeadSourceRepository {
	return &leadSourceRepoPG{pool: pool}
}

func (r *leadSourceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const leadSourceCols = `id, name, description, is_active, display_order, created_at, updated_at`

func scanLeadSource(row pgx.Row) (*LeadSource, error) {
	var ls LeadSource
	err := row.Scan(&ls.ID, &ls.Name, &ls.Description, &ls.IsActive, &ls.DisplayOrder,
		&ls.CreatedAt, &ls.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &ls, err
}

func (r *leadSourceRepoPG) Create(ctx context.Context, ls *LeadSource) error {
	ls.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lead_source (id, name, description, is_active, display_order)
		VALUES ($1,$2,$3,$4,$5)`,
		ls.ID, ls.Name, ls.Description, ls.IsActive, ls.DisplayOrder)
	return err
}

func (r *leadSourceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LeadSource, error) {
	return scanLeadSource(r.conn(ctx).QueryRow(ctx,
		`SELECT `+leadSourceCols+` FROM lead_source WHERE id = $1`, id))
}

func (r *leadSourceRepoPG) List(ctx context.Context) ([]*LeadSource, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+leadSourceCols+` FROM lead_source ORDER BY display_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LeadSource
	for rows.Next() {
		ls, err := scanLeadSource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ls)
	}
	return items, rows.Err()
}

func (r *leadSourceRepoPG) Update(ctx context.Context, ls *LeadSource) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE lead_source SET name=$2, description=$3, is_active=$4, display_order=$5, updated_at=NOW()
		WHERE id = $1`,
		ls.ID, ls.Name, ls.Description, ls.IsActive, ls.DisplayOrder)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}
