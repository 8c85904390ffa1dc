package pricing

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

type priceListRepoPG struct{ pool *pgxpool.Pool }

func NewPriceListRepoPG(pool *pgxpool.Pool) PriceListRepository {
	return &priceListRepoPG{pool: pool}
}

const priceListCols = `id, name, description, is_active, created_at, updated_at`

func scanPriceList(row pgx.Row) (*PriceList, error) {
	var pl PriceList
	err := row.Scan(&pl.ID, &pl.Name, &pl.Description, &pl.IsActive, &pl.CreatedAt, &pl.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &pl, err
}

func (r *priceListRepoPG) Create(ctx context.Context, pl *PriceList) error {
	pl.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO price_list (id, name, description, is_active)
		VALUES ($1,$2,$3,$4)`,
		pl.ID, pl.Name, pl.Description, pl.IsActive)
	return err
}

func (r *priceListRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PriceList, error) {
	return scanPriceList(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+priceListCols+` FROM price_list WHERE id = $1`, id))
}

func (r *priceListRepoPG) Update(ctx context.Context, pl *PriceList) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE price_list SET name=$2, description=$3, is_active=$4, updated_at=NOW()
		WHERE id = $1`,
		pl.ID, pl.Name, pl.Description, pl.IsActive)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *priceListRepoPG) List(ctx context.Context, limit, offset int) ([]*PriceList, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM price_list`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+priceListCols+` FROM price_list ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PriceList
	for rows.Next() {
		pl, err := scanPriceList(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, pl)
	}
	return items, total, rows.Err()
}

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository {
	return &itemRepoPG{pool: pool}
}

const itemCols = `id, price_list_id, exam_id, price, created_at, updated_at`

func scanItem(row pgx.Row) (*PriceListItem, error) {
	var it PriceListItem
	err := row.Scan(&it.ID, &it.PriceListID, &it.ExamID, &it.Price, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &it, err
}

func (r *itemRepoPG) Get(ctx context.Context, priceListID, examID uuid.UUID) (*PriceListItem, error) {
	return scanItem(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+itemCols+` FROM price_list_item WHERE price_list_id = $1 AND exam_id = $2`,
		priceListID, examID))
}

func (r *itemRepoPG) Upsert(ctx context.Context, item *PriceListItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO price_list_item (id, price_list_id, exam_id, price)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (price_list_id, exam_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()`,
		item.ID, item.PriceListID, item.ExamID, item.Price)
	return err
}

func (r *itemRepoPG) Delete(ctx context.Context, priceListID, examID uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM price_list_item WHERE price_list_id = $1 AND exam_id = $2`, priceListID, examID)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *itemRepoPG) ListByPriceList(ctx context.Context, priceListID uuid.UUID) ([]*PriceListItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+itemCols+` FROM price_list_item WHERE price_list_id = $1 ORDER BY created_at`, priceListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PriceListItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type couponRepoPG struct{ pool *pgxpool.Pool }

func NewCouponRepoPG(pool *pgxpool.Pool) CouponRepository {
	return &couponRepoPG{pool: pool}
}

const couponCols = `id, code, price_list_id, expiration_date, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	err := row.Scan(&c.ID, &c.Code, &c.PriceListID, &c.ExpirationDate, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *couponRepoPG) Create(ctx context.Context, c *Coupon) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO coupon (id, code, price_list_id, expiration_date, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Code, c.PriceListID, c.ExpirationDate, c.IsActive)
	return err
}

func (r *couponRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return scanCoupon(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+couponCols+` FROM coupon WHERE id = $1`, id))
}

func (r *couponRepoPG) GetActiveByCode(ctx context.Context, code string) (*Coupon, error) {
	return scanCoupon(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+couponCols+` FROM coupon WHERE UPPER(code) = UPPER($1) AND is_active = true`, code))
}

func (r *couponRepoPG) Update(ctx context.Context, c *Coupon) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE coupon SET code=$2, price_list_id=$3, expiration_date=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Code, c.PriceListID, c.ExpirationDate, c.IsActive)
	if err == nil && tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return err
}

func (r *couponRepoPG) List(ctx context.Context, limit, offset int) ([]*Coupon, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM coupon`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+couponCols+` FROM coupon ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
