package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caja/src/sales/domain/entity"
	"caja/src/sales/domain/port"
	domainCriteria "caja/src/shared/domain/criteria"
	"caja/src/shared/infrastructure/criteria"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SaleJournalPostgresRepository implementa SaleJournalRepository usando PostgreSQL
// Sin updates ni deletes, solo insert y select
type SaleJournalPostgresRepository struct {
	db         *sql.DB
	terminalID string
	converter  *criteria.SQLCriteriaConverter
}

// NewSaleJournalPostgresRepository crea una nueva instancia del repositorio
func NewSaleJournalPostgresRepository(db *sql.DB, terminalID string) *SaleJournalPostgresRepository {
	return &SaleJournalPostgresRepository{
		db:         db,
		terminalID: terminalID,
		converter:  criteria.NewSQLCriteriaConverter(),
	}
}

var _ port.SaleJournalRepository = (*SaleJournalPostgresRepository)(nil)

// EnsureSchema crea las tablas del diario si no existen
func (r *SaleJournalPostgresRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS pos_sales (
			id                UUID PRIMARY KEY,
			sale_number       TEXT NOT NULL,
			session_id        TEXT NOT NULL,
			terminal_id       TEXT NOT NULL,
			operator          TEXT NOT NULL DEFAULT '',
			payment_method    TEXT NOT NULL,
			total_amount      NUMERIC(14,2) NOT NULL,
			cash_tendered     NUMERIC(14,2) NOT NULL,
			digital_tendered  NUMERIC(14,2) NOT NULL,
			change            NUMERIC(14,2) NOT NULL,
			cash_contribution NUMERIC(14,2) NOT NULL,
			currency          TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS pos_sales_session_idx ON pos_sales (session_id);
		CREATE INDEX IF NOT EXISTS pos_sales_created_idx ON pos_sales (terminal_id, created_at);
		CREATE TABLE IF NOT EXISTS pos_sale_items (
			pos_sale_id   UUID NOT NULL REFERENCES pos_sales(id),
			line_no       INTEGER NOT NULL,
			product_id    TEXT NOT NULL,
			product_name  TEXT NOT NULL,
			blister_qty   INTEGER NOT NULL,
			unit_qty      INTEGER NOT NULL,
			blister_price NUMERIC(14,2),
			unit_price    NUMERIC(14,2) NOT NULL,
			discount      NUMERIC(14,2) NOT NULL,
			subtotal      NUMERIC(14,2) NOT NULL,
			PRIMARY KEY (pos_sale_id, line_no)
		);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating sale journal tables: %w", err)
	}
	return nil
}

// Record persiste una venta con sus líneas (atomically).
// Una venta ya registrada con el mismo id se ignora.
func (r *SaleJournalPostgresRepository) Record(ctx context.Context, sale *entity.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Insertar pos_sale (aggregate root)
	querySale := `
		INSERT INTO pos_sales (
			id, sale_number, session_id, terminal_id, operator, payment_method,
			total_amount, cash_tendered, digital_tendered, change, cash_contribution,
			currency, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, querySale,
		sale.ID,
		sale.SaleNumber,
		sale.SessionID,
		r.terminalID,
		sale.Operator,
		string(sale.Method),
		sale.Total,
		sale.CashTendered,
		sale.DigitalTendered,
		sale.ChangeDue,
		sale.CashContribution,
		sale.Currency,
		sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating pos_sale: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	// 2. Insertar pos_sale_items
	queryItem := `
		INSERT INTO pos_sale_items (
			pos_sale_id, line_no, product_id, product_name,
			blister_qty, unit_qty, blister_price, unit_price, discount, subtotal
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`
	for i, line := range sale.Lines {
		var blisterPrice decimal.NullDecimal
		if line.BlisterPrice != nil {
			blisterPrice = decimal.NewNullDecimal(*line.BlisterPrice)
		}
		_, err = tx.ExecContext(ctx, queryItem,
			sale.ID,
			i+1,
			line.ProductID,
			line.ProductName,
			line.BlisterQty,
			line.UnitQty,
			blisterPrice,
			line.UnitPrice,
			line.Discount,
			line.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("error creating pos_sale_item for product %s: %w", line.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// ListBySession retorna las ventas de una sesión CON sus líneas
func (r *SaleJournalPostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.Sale, error) {
	c := domainCriteria.NewCriteriaBuilder().
		Where("session_id", domainCriteria.OpEqual, sessionID).
		OrderBy("created_at", domainCriteria.DESC).
		Build()
	sales, _, err := r.Search(ctx, c)
	return sales, err
}

// Search busca ventas de la terminal CON sus líneas
func (r *SaleJournalPostgresRepository) Search(ctx context.Context, c domainCriteria.Criteria) ([]*entity.Sale, int, error) {
	c = c.WithFilter(domainCriteria.Filter{Field: "terminal_id", Operator: domainCriteria.OpEqual, Value: r.terminalID})
	if c.Order.IsEmpty() {
		c.Order = domainCriteria.NewOrder("created_at", domainCriteria.DESC)
	}

	// 1. Obtener pos_sales
	baseQuery := `
		SELECT
			id, sale_number, session_id, terminal_id, operator, payment_method,
			total_amount, cash_tendered, digital_tendered, change, cash_contribution,
			currency, created_at
		FROM pos_sales`
	query, params := r.converter.ToSelectSQL(baseQuery, c)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying pos_sales: %w", err)
	}
	defer rows.Close()

	sales := []*entity.Sale{}
	for rows.Next() {
		var s entity.Sale
		var method string
		if err := rows.Scan(
			&s.ID, &s.SaleNumber, &s.SessionID, &s.TerminalID, &s.Operator, &method,
			&s.Total, &s.CashTendered, &s.DigitalTendered, &s.ChangeDue, &s.CashContribution,
			&s.Currency, &s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning pos_sale: %w", err)
		}
		s.Method = entity.PaymentMethod(method)
		s.Lines = []entity.SaleLine{}
		sales = append(sales, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating pos_sales: %w", err)
	}

	// 2. Total sin paginar
	total := len(sales)
	if c.Limit != nil {
		countQuery, countParams := r.converter.ToCountSQL("SELECT COUNT(*) FROM pos_sales", c)
		if err := r.db.QueryRowContext(ctx, countQuery, countParams...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("error counting pos_sales: %w", err)
		}
	}

	// 3. Obtener items de las ventas encontradas
	if err := r.loadLines(ctx, sales); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// loadLines carga los items de todas las ventas en una sola consulta
func (r *SaleJournalPostgresRepository) loadLines(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID.String())
		byID[s.ID.String()] = s
	}

	queryItems := `
		SELECT
			pos_sale_id, product_id, product_name, blister_qty, unit_qty,
			blister_price, unit_price, discount, subtotal
		FROM pos_sale_items
		WHERE pos_sale_id = ANY($1::uuid[])
		ORDER BY pos_sale_id, line_no
	`
	itemRows, err := r.db.QueryContext(ctx, queryItems, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error querying pos_sale_items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID string
		var line entity.SaleLine
		var blisterPrice decimal.NullDecimal
		if err := itemRows.Scan(
			&saleID, &line.ProductID, &line.ProductName, &line.BlisterQty, &line.UnitQty,
			&blisterPrice, &line.UnitPrice, &line.Discount, &line.Subtotal,
		); err != nil {
			return fmt.Errorf("error scanning pos_sale_item: %w", err)
		}
		if blisterPrice.Valid {
			p := blisterPrice.Decimal
			line.BlisterPrice = &p
		}
		if s, ok := byID[saleID]; ok {
			s.Lines = append(s.Lines, line)
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("error iterating pos_sale_items: %w", err)
	}
	return nil
}

// DailyTotals agrega las ventas de la terminal en [from, to).
// Usa >= from AND < to para aprovechar el índice en created_at.
func (r *SaleJournalPostgresRepository) DailyTotals(ctx context.Context, from, to time.Time) (*entity.DailyTotals, error) {
	query := `
		SELECT
			payment_method,
			COUNT(*) AS sales_count,
			COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(cash_contribution), 0) AS cash_in_drawer,
			MIN(created_at) AS first_sale,
			MAX(created_at) AS last_sale
		FROM pos_sales
		WHERE terminal_id = $1
			AND created_at >= $2
			AND created_at < $3
		GROUP BY payment_method
	`
	rows, err := r.db.QueryContext(ctx, query, r.terminalID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying daily totals: %w", err)
	}
	defer rows.Close()

	totals := newDailyTotals()
	for rows.Next() {
		var (
			method      string
			count       int
			total       decimal.Decimal
			drawer      decimal.Decimal
			first, last sql.NullTime
		)
		if err := rows.Scan(&method, &count, &total, &drawer, &first, &last); err != nil {
			return nil, fmt.Errorf("error scanning daily totals: %w", err)
		}
		addMethodTotals(totals, entity.PaymentMethod(method), count, total, drawer, first, last)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily totals: %w", err)
	}
	return totals, nil
}

func newDailyTotals() *entity.DailyTotals {
	return &entity.DailyTotals{
		GrossTotal:     decimal.Zero,
		CashTotal:      decimal.Zero,
		DigitalTotal:   decimal.Zero,
		MixedTotal:     decimal.Zero,
		CashInDrawer:   decimal.Zero,
		CountsByMethod: map[entity.PaymentMethod]int{},
	}
}

// addMethodTotals combina en memoria la fila agregada de un método de pago
func addMethodTotals(t *entity.DailyTotals, method entity.PaymentMethod, count int, total, drawer decimal.Decimal, first, last sql.NullTime) {
	t.SalesCount += count
	t.GrossTotal = t.GrossTotal.Add(total)
	t.CashInDrawer = t.CashInDrawer.Add(drawer)
	t.CountsByMethod[method] += count

	switch method {
	case entity.PaymentCash:
		t.CashTotal = t.CashTotal.Add(total)
	case entity.PaymentDigital:
		t.DigitalTotal = t.DigitalTotal.Add(total)
	case entity.PaymentMixed:
		t.MixedTotal = t.MixedTotal.Add(total)
	}

	if first.Valid && (t.FirstSaleAt == nil || first.Time.Before(*t.FirstSaleAt)) {
		f := first.Time.UTC()
		t.FirstSaleAt = &f
	}
	if last.Valid && (t.LastSaleAt == nil || last.Time.After(*t.LastSaleAt)) {
		l := last.Time.UTC()
		t.LastSaleAt = &l
	}
}
