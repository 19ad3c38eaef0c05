package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"pumpkhata/backend/internal/domain"
	"pumpkhata/backend/internal/store"
	"pumpkhata/backend/internal/xid"
)

// Store implements the bookkeeping repository on PostgreSQL. Composite
// mutations run in serializable transactions so the stock, ledger, and
// customer balances never drift apart.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables and seeds the fuel catalog defaults on
// first run.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fuel_config (
			fuel_type       TEXT PRIMARY KEY,
			unit_price      NUMERIC(12,2) NOT NULL,
			stock_liters    NUMERIC(14,3) NOT NULL,
			capacity_liters NUMERIC(14,3) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			balance    NUMERIC(14,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			seq           BIGSERIAL,
			id            TEXT PRIMARY KEY,
			type          TEXT NOT NULL,
			fuel_type     TEXT,
			quantity      NUMERIC(14,3) NOT NULL DEFAULT 0,
			amount        NUMERIC(14,2) NOT NULL DEFAULT 0,
			is_credit     BOOLEAN NOT NULL DEFAULT false,
			customer_id   TEXT,
			customer_name TEXT,
			description   TEXT,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_created_at_idx ON transactions (created_at)`,
		`INSERT INTO fuel_config (fuel_type, unit_price, stock_liters, capacity_liters)
			VALUES ('petrol', 102.50, 0, 20000), ('diesel', 95.80, 0, 20000)
			ON CONFLICT (fuel_type) DO NOTHING`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) GetPrices(ctx context.Context) (map[domain.FuelType]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fuel_type, unit_price FROM fuel_config`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[domain.FuelType]decimal.Decimal, 2)
	for rows.Next() {
		var ft domain.FuelType
		var price decimal.Decimal
		if err := rows.Scan(&ft, &price); err != nil {
			return nil, err
		}
		prices[ft] = price
	}
	return prices, rows.Err()
}

func (s *Store) SetPrices(ctx context.Context, prices map[domain.FuelType]decimal.Decimal) error {
	if len(prices) == 0 {
		return store.ErrInvalidInput
	}
	for ft, p := range prices {
		if !domain.ValidFuelType(ft) || !p.IsPositive() {
			return store.ErrInvalidInput
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for ft, p := range prices {
		if _, err := tx.ExecContext(ctx, `
			UPDATE fuel_config SET unit_price = $2 WHERE fuel_type = $1
		`, string(ft), p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetFuelStatus(ctx context.Context) ([]domain.FuelStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fuel_type, unit_price, stock_liters, capacity_liters
		FROM fuel_config
		ORDER BY fuel_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	status := make([]domain.FuelStatus, 0, 2)
	for rows.Next() {
		var fs domain.FuelStatus
		if err := rows.Scan(&fs.FuelType, &fs.UnitPrice, &fs.StockLiters, &fs.CapacityLiters); err != nil {
			return nil, err
		}
		status = append(status, fs)
	}
	return status, rows.Err()
}

func (s *Store) CreateSale(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, isCredit bool, customerName string) (*domain.SaleResponse, error) {
	if !domain.ValidFuelType(fuelType) || !quantity.IsPositive() {
		return nil, store.ErrInvalidInput
	}
	customerName = strings.TrimSpace(customerName)
	if isCredit && customerName == "" {
		return nil, store.ErrInvalidInput
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var price, stock decimal.Decimal
	err = pgTx.QueryRowContext(ctx, `
		SELECT unit_price, stock_liters FROM fuel_config WHERE fuel_type = $1 FOR UPDATE
	`, string(fuelType)).Scan(&price, &stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	remaining := stock.Sub(quantity)
	if remaining.IsNegative() {
		return nil, store.ErrInsufficientStock
	}
	amount := quantity.Mul(price)

	now := time.Now().UTC()
	tx := domain.Transaction{
		ID:        xid.New("txn"),
		Type:      domain.TxTypeSale,
		FuelType:  fuelType,
		Quantity:  quantity,
		Amount:    amount,
		IsCredit:  isCredit,
		CreatedAt: now,
	}

	if isCredit {
		var customerID, canonicalName string
		var balance decimal.Decimal
		err = pgTx.QueryRowContext(ctx, `
			SELECT id, name, balance FROM customers
			WHERE lower(trim(name)) = lower(trim($1))
			FOR UPDATE
		`, customerName).Scan(&customerID, &canonicalName, &balance)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			customerID = xid.New("cus")
			canonicalName = customerName
			if _, err := pgTx.ExecContext(ctx, `
				INSERT INTO customers (id, name, balance, created_at)
				VALUES ($1, $2, $3, $4)
			`, customerID, canonicalName, amount, now); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			if _, err := pgTx.ExecContext(ctx, `
				UPDATE customers SET balance = balance + $2 WHERE id = $1
			`, customerID, amount); err != nil {
				return nil, err
			}
		}
		tx.CustomerID = customerID
		tx.CustomerName = canonicalName
	}

	if _, err := pgTx.ExecContext(ctx, `
		UPDATE fuel_config SET stock_liters = $2 WHERE fuel_type = $1
	`, string(fuelType), remaining); err != nil {
		return nil, err
	}
	if err := insertTransaction(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return &domain.SaleResponse{Transaction: tx, RemainingStock: remaining}, nil
}

func (s *Store) CreateExpense(ctx context.Context, description string, amount decimal.Decimal) (*domain.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" || !amount.IsPositive() {
		return nil, store.ErrInvalidInput
	}

	tx := domain.Transaction{
		ID:          xid.New("txn"),
		Type:        domain.TxTypeExpense,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, tx.ID, tx.Type, tx.Amount, tx.Description, tx.CreatedAt); err != nil {
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) AddStock(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, description string) (*domain.Transaction, error) {
	if !domain.ValidFuelType(fuelType) || !quantity.IsPositive() {
		return nil, store.ErrInvalidInput
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("received %s L %s", quantity.String(), fuelType)
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	res, err := pgTx.ExecContext(ctx, `
		UPDATE fuel_config SET stock_liters = stock_liters + $2 WHERE fuel_type = $1
	`, string(fuelType), quantity)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if affected == 0 {
		return nil, store.ErrInvalidInput
	}

	tx := domain.Transaction{
		ID:          xid.New("txn"),
		Type:        domain.TxTypeStock,
		FuelType:    fuelType,
		Quantity:    quantity,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := insertTransaction(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) SetStockLevels(ctx context.Context, levels map[domain.FuelType]decimal.Decimal) ([]domain.Transaction, error) {
	if len(levels) == 0 {
		return nil, store.ErrInvalidInput
	}
	for ft, level := range levels {
		if !domain.ValidFuelType(ft) || level.IsNegative() {
			return nil, store.ErrInvalidInput
		}
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	adjustments := make([]domain.Transaction, 0, len(levels))
	for _, ft := range domain.KnownFuelTypes() {
		level, ok := levels[ft]
		if !ok {
			continue
		}
		var current decimal.Decimal
		err := pgTx.QueryRowContext(ctx, `
			SELECT stock_liters FROM fuel_config WHERE fuel_type = $1 FOR UPDATE
		`, string(ft)).Scan(&current)
		if err != nil {
			return nil, err
		}
		if level.Equal(current) {
			continue
		}
		if _, err := pgTx.ExecContext(ctx, `
			UPDATE fuel_config SET stock_liters = $2 WHERE fuel_type = $1
		`, string(ft), level); err != nil {
			return nil, err
		}
		tx := domain.Transaction{
			ID:          xid.New("txn"),
			Type:        domain.TxTypeStock,
			FuelType:    ft,
			Quantity:    level.Sub(current),
			Description: fmt.Sprintf("%s level set to %s L", ft, level.String()),
			CreatedAt:   time.Now().UTC(),
		}
		if err := insertTransaction(ctx, pgTx, tx); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, tx)
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (s *Store) CreateRepayment(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, store.ErrInvalidInput
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var name string
	var balance decimal.Decimal
	err = pgTx.QueryRowContext(ctx, `
		SELECT name, balance FROM customers WHERE id = $1 FOR UPDATE
	`, customerID).Scan(&name, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCustomerNotFound
		}
		return nil, err
	}
	if amount.GreaterThan(balance) {
		return nil, store.ErrRepaymentExceedsBalance
	}

	if _, err := pgTx.ExecContext(ctx, `
		UPDATE customers SET balance = balance - $2 WHERE id = $1
	`, customerID, amount); err != nil {
		return nil, err
	}

	tx := domain.Transaction{
		ID:           xid.New("txn"),
		Type:         domain.TxTypeRepayment,
		Amount:       amount,
		CustomerID:   customerID,
		CustomerName: name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := insertTransaction(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	created := tx
	return &created, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, description *string, amount *decimal.Decimal) (*domain.Transaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := scanTransaction(pgTx.QueryRowContext(ctx, selectTransaction+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, err
	}
	if tx.Type != domain.TxTypeExpense {
		return nil, store.ErrInvalidInput
	}
	if description != nil {
		trimmed := strings.TrimSpace(*description)
		if trimmed == "" {
			return nil, store.ErrInvalidInput
		}
		tx.Description = trimmed
	}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, store.ErrInvalidInput
		}
		tx.Amount = *amount
	}

	if _, err := pgTx.ExecContext(ctx, `
		UPDATE transactions SET description = $2, amount = $3 WHERE id = $1
	`, id, tx.Description, tx.Amount); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := scanTransaction(pgTx.QueryRowContext(ctx, selectTransaction+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, err
	}

	switch tx.Type {
	case domain.TxTypeSale:
		if _, err := pgTx.ExecContext(ctx, `
			UPDATE fuel_config SET stock_liters = stock_liters + $2 WHERE fuel_type = $1
		`, string(tx.FuelType), tx.Quantity); err != nil {
			return nil, err
		}
		if tx.IsCredit && tx.CustomerID != "" {
			if _, err := pgTx.ExecContext(ctx, `
				UPDATE customers SET balance = GREATEST(balance - $2, 0) WHERE id = $1
			`, tx.CustomerID, tx.Amount); err != nil {
				return nil, err
			}
		}
	case domain.TxTypeRepayment:
		if tx.CustomerID != "" {
			if _, err := pgTx.ExecContext(ctx, `
				UPDATE customers SET balance = balance + $2 WHERE id = $1
			`, tx.CustomerID, tx.Amount); err != nil {
				return nil, err
			}
		}
	case domain.TxTypeStock:
		if _, err := pgTx.ExecContext(ctx, `
			UPDATE fuel_config SET stock_liters = stock_liters - $2 WHERE fuel_type = $1
		`, string(tx.FuelType), tx.Quantity); err != nil {
			return nil, err
		}
	}

	if _, err := pgTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

const selectTransaction = `
	SELECT id, type, fuel_type, quantity, amount, is_credit, customer_id, customer_name, description, created_at
	FROM transactions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var fuelType, customerID, customerName, description sql.NullString
	if err := row.Scan(&tx.ID, &tx.Type, &fuelType, &tx.Quantity, &tx.Amount,
		&tx.IsCredit, &customerID, &customerName, &description, &tx.CreatedAt); err != nil {
		return nil, err
	}
	tx.FuelType = domain.FuelType(fuelType.String)
	tx.CustomerID = customerID.String
	tx.CustomerName = customerName.String
	tx.Description = description.String
	return &tx, nil
}

func insertTransaction(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, tx domain.Transaction) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO transactions (id, type, fuel_type, quantity, amount, is_credit, customer_id, customer_name, description, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, tx.ID, tx.Type, nullIfEmpty(string(tx.FuelType)), tx.Quantity, tx.Amount,
		tx.IsCredit, nullIfEmpty(tx.CustomerID), nullIfEmpty(tx.CustomerName),
		nullIfEmpty(tx.Description), tx.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrInvalidInput
	}
	return err
}

func (s *Store) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, selectTransaction+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTransactionNotFound
	}
	return tx, err
}

func (s *Store) ListTransactions(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Transaction, error) {
	if limit < 1 {
		limit = 500
	}
	query := selectTransaction + ` WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY seq DESC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, nullTime(from), nullTime(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, balance, created_at FROM customers ORDER BY lower(name)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Balance, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, balance, created_at FROM customers WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Balance, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) RenameCustomer(ctx context.Context, id string, name string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrInvalidInput
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var collision bool
	if err := pgTx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customers
			WHERE id <> $1 AND lower(trim(name)) = lower(trim($2))
		)
	`, id, name).Scan(&collision); err != nil {
		return nil, err
	}
	if collision {
		return nil, store.ErrInvalidInput
	}

	var c domain.Customer
	err = pgTx.QueryRowContext(ctx, `
		UPDATE customers SET name = $2 WHERE id = $1
		RETURNING id, name, balance, created_at
	`, id, name).Scan(&c.ID, &c.Name, &c.Balance, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCustomerNotFound
		}
		return nil, err
	}
	if _, err := pgTx.ExecContext(ctx, `
		UPDATE transactions SET customer_name = $2 WHERE customer_id = $1
	`, id, name); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = pgTx.Rollback() }()

	res, err := pgTx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err != nil {
		return err
	} else if affected == 0 {
		return store.ErrCustomerNotFound
	}
	// Ledger entries survive unlinked; their balance effects are not reversed.
	if _, err := pgTx.ExecContext(ctx, `
		UPDATE transactions SET customer_id = NULL, customer_name = NULL WHERE customer_id = $1
	`, id); err != nil {
		return err
	}
	return pgTx.Commit()
}

func (s *Store) GetDailySummary(ctx context.Context, from time.Time, to time.Time) (domain.DailySummary, error) {
	var summary domain.DailySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'sale' AND is_credit), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at < $2)
	`, nullTime(from), nullTime(to)).Scan(&summary.TransactionCount, &summary.TotalSales, &summary.CreditSales, &summary.TotalExpenses)
	if err != nil {
		return domain.DailySummary{}, err
	}
	summary.CashSales = summary.TotalSales.Sub(summary.CreditSales)
	summary.NetRevenue = summary.TotalSales.Sub(summary.CreditSales).Sub(summary.TotalExpenses)

	summary.CreditDue, err = s.GetCreditDue(ctx)
	if err != nil {
		return domain.DailySummary{}, err
	}
	return summary, nil
}

func (s *Store) GetCreditDue(ctx context.Context) (decimal.Decimal, error) {
	var due decimal.Decimal
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(balance), 0) FROM customers
	`).Scan(&due); err != nil {
		return decimal.Decimal{}, err
	}
	return due, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
