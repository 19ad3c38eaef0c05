package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pumpkhata/backend/internal/docstore"
	"pumpkhata/backend/internal/domain"
	"pumpkhata/backend/internal/store"
	"pumpkhata/backend/internal/xid"
)

// Store keeps the full bookkeeping state behind one mutex so composite
// mutations (guard, balance change, ledger append) are atomic. After every
// successful mutation the state is snapshotted to the document store; a
// failed snapshot is logged as a warning and never fails the operation.
type Store struct {
	mu           sync.RWMutex
	prices       map[domain.FuelType]decimal.Decimal
	stock        map[domain.FuelType]decimal.Decimal
	capacities   map[domain.FuelType]decimal.Decimal
	transactions []domain.Transaction // newest first
	customers    map[string]domain.Customer
	match        store.CustomerMatcher
	docs         docstore.Store
}

func defaultPrices() map[domain.FuelType]decimal.Decimal {
	return map[domain.FuelType]decimal.Decimal{
		domain.FuelPetrol: decimal.RequireFromString("102.50"),
		domain.FuelDiesel: decimal.RequireFromString("95.80"),
	}
}

func defaultStock() map[domain.FuelType]decimal.Decimal {
	return map[domain.FuelType]decimal.Decimal{
		domain.FuelPetrol: decimal.Zero,
		domain.FuelDiesel: decimal.Zero,
	}
}

func defaultCapacities() map[domain.FuelType]decimal.Decimal {
	tank := decimal.NewFromInt(20000)
	return map[domain.FuelType]decimal.Decimal{
		domain.FuelPetrol: tank,
		domain.FuelDiesel: tank,
	}
}

func New() *Store {
	return NewWithMatcher(store.DefaultCustomerMatcher)
}

func NewWithMatcher(match store.CustomerMatcher) *Store {
	if match == nil {
		match = store.DefaultCustomerMatcher
	}
	return &Store{
		prices:       defaultPrices(),
		stock:        defaultStock(),
		capacities:   defaultCapacities(),
		transactions: make([]domain.Transaction, 0, 128),
		customers:    make(map[string]domain.Customer),
		match:        match,
		docs:         docstore.Noop{},
	}
}

// NewPersistent loads the four state documents from docs, falling back to
// per-document defaults when one is absent, and snapshots back after every
// mutation.
func NewPersistent(ctx context.Context, docs docstore.Store) (*Store, error) {
	s := New()
	s.docs = docs

	if data, ok, err := docs.Load(ctx, docstore.DocFuelPrices); err != nil {
		return nil, fmt.Errorf("load %s: %w", docstore.DocFuelPrices, err)
	} else if ok {
		if err := json.Unmarshal(data, &s.prices); err != nil {
			return nil, fmt.Errorf("decode %s: %w", docstore.DocFuelPrices, err)
		}
	}
	if data, ok, err := docs.Load(ctx, docstore.DocFuelStock); err != nil {
		return nil, fmt.Errorf("load %s: %w", docstore.DocFuelStock, err)
	} else if ok {
		if err := json.Unmarshal(data, &s.stock); err != nil {
			return nil, fmt.Errorf("decode %s: %w", docstore.DocFuelStock, err)
		}
	}
	if data, ok, err := docs.Load(ctx, docstore.DocTransactions); err != nil {
		return nil, fmt.Errorf("load %s: %w", docstore.DocTransactions, err)
	} else if ok {
		if err := json.Unmarshal(data, &s.transactions); err != nil {
			return nil, fmt.Errorf("decode %s: %w", docstore.DocTransactions, err)
		}
	}
	if data, ok, err := docs.Load(ctx, docstore.DocCustomers); err != nil {
		return nil, fmt.Errorf("load %s: %w", docstore.DocCustomers, err)
	} else if ok {
		var customers []domain.Customer
		if err := json.Unmarshal(data, &customers); err != nil {
			return nil, fmt.Errorf("decode %s: %w", docstore.DocCustomers, err)
		}
		for _, c := range customers {
			s.customers[c.ID] = c
		}
	}
	return s, nil
}

// snapshotLocked writes the four documents. Callers hold the write lock.
func (s *Store) snapshotLocked(ctx context.Context) {
	docs := []struct {
		name  string
		value any
	}{
		{docstore.DocTransactions, s.transactions},
		{docstore.DocCustomers, s.customerListLocked()},
		{docstore.DocFuelStock, s.stock},
		{docstore.DocFuelPrices, s.prices},
	}
	for _, d := range docs {
		data, err := json.Marshal(d.value)
		if err != nil {
			log.Printf("[memory-store] WARN: encode snapshot %s: %v", d.name, err)
			continue
		}
		if err := s.docs.Save(ctx, d.name, data); err != nil {
			log.Printf("[memory-store] WARN: save snapshot %s: %v", d.name, err)
		}
	}
}

func (s *Store) customerListLocked() []domain.Customer {
	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return customers
}

func (s *Store) GetPrices(_ context.Context) (map[domain.FuelType]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := make(map[domain.FuelType]decimal.Decimal, len(s.prices))
	for ft, p := range s.prices {
		prices[ft] = p
	}
	return prices, nil
}

func (s *Store) SetPrices(ctx context.Context, prices map[domain.FuelType]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(prices) == 0 {
		return store.ErrInvalidInput
	}
	for ft, p := range prices {
		if !domain.ValidFuelType(ft) || !p.IsPositive() {
			return store.ErrInvalidInput
		}
	}
	for ft, p := range prices {
		s.prices[ft] = p
	}
	s.snapshotLocked(ctx)
	return nil
}

func (s *Store) GetFuelStatus(_ context.Context) ([]domain.FuelStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fuelStatusLocked(), nil
}

func (s *Store) fuelStatusLocked() []domain.FuelStatus {
	status := make([]domain.FuelStatus, 0, len(s.stock))
	for _, ft := range domain.KnownFuelTypes() {
		status = append(status, domain.FuelStatus{
			FuelType:       ft,
			UnitPrice:      s.prices[ft],
			StockLiters:    s.stock[ft],
			CapacityLiters: s.capacities[ft],
		})
	}
	return status
}

func (s *Store) CreateSale(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, isCredit bool, customerName string) (*domain.SaleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidFuelType(fuelType) || !quantity.IsPositive() {
		return nil, store.ErrInvalidInput
	}
	customerName = strings.TrimSpace(customerName)
	if isCredit && customerName == "" {
		return nil, store.ErrInvalidInput
	}

	remaining := s.stock[fuelType].Sub(quantity)
	if remaining.IsNegative() {
		return nil, store.ErrInsufficientStock
	}
	amount := quantity.Mul(s.prices[fuelType])

	tx := domain.Transaction{
		ID:        xid.New("txn"),
		Type:      domain.TxTypeSale,
		FuelType:  fuelType,
		Quantity:  quantity,
		Amount:    amount,
		IsCredit:  isCredit,
		CreatedAt: time.Now().UTC(),
	}

	if isCredit {
		customer := s.findCustomerByNameLocked(customerName)
		if customer == nil {
			created := domain.Customer{
				ID:        xid.New("cus"),
				Name:      customerName,
				Balance:   decimal.Zero,
				CreatedAt: tx.CreatedAt,
			}
			s.customers[created.ID] = created
			customer = &created
		}
		customer.Balance = customer.Balance.Add(amount)
		s.customers[customer.ID] = *customer
		tx.CustomerID = customer.ID
		tx.CustomerName = customer.Name
	}

	s.stock[fuelType] = remaining
	s.transactions = slices.Insert(s.transactions, 0, tx)
	s.snapshotLocked(ctx)

	return &domain.SaleResponse{Transaction: tx, RemainingStock: remaining}, nil
}

func (s *Store) findCustomerByNameLocked(name string) *domain.Customer {
	for _, c := range s.customers {
		if s.match(c.Name, name) {
			found := c
			return &found
		}
	}
	return nil
}

func (s *Store) CreateExpense(ctx context.Context, description string, amount decimal.Decimal) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.transactions = slices.Insert(s.transactions, 0, tx)
	s.snapshotLocked(ctx)

	created := tx
	return &created, nil
}

func (s *Store) AddStock(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, description string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !domain.ValidFuelType(fuelType) || !quantity.IsPositive() {
		return nil, store.ErrInvalidInput
	}

	level := s.stock[fuelType].Add(quantity)
	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("received %s L %s", quantity.String(), fuelType)
	}

	tx := domain.Transaction{
		ID:          xid.New("txn"),
		Type:        domain.TxTypeStock,
		FuelType:    fuelType,
		Quantity:    quantity,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.stock[fuelType] = level
	s.transactions = slices.Insert(s.transactions, 0, tx)
	s.snapshotLocked(ctx)

	created := tx
	return &created, nil
}

func (s *Store) SetStockLevels(ctx context.Context, levels map[domain.FuelType]decimal.Decimal) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(levels) == 0 {
		return nil, store.ErrInvalidInput
	}
	for ft, level := range levels {
		if !domain.ValidFuelType(ft) || level.IsNegative() {
			return nil, store.ErrInvalidInput
		}
	}

	adjustments := make([]domain.Transaction, 0, len(levels))
	for _, ft := range domain.KnownFuelTypes() {
		level, ok := levels[ft]
		if !ok || level.Equal(s.stock[ft]) {
			continue
		}
		delta := level.Sub(s.stock[ft])
		tx := domain.Transaction{
			ID:          xid.New("txn"),
			Type:        domain.TxTypeStock,
			FuelType:    ft,
			Quantity:    delta,
			Description: fmt.Sprintf("%s level set to %s L", ft, level.String()),
			CreatedAt:   time.Now().UTC(),
		}
		s.stock[ft] = level
		s.transactions = slices.Insert(s.transactions, 0, tx)
		adjustments = append(adjustments, tx)
	}
	s.snapshotLocked(ctx)

	return adjustments, nil
}

func (s *Store) CreateRepayment(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return nil, store.ErrInvalidInput
	}
	customer, exists := s.customers[customerID]
	if !exists {
		return nil, store.ErrCustomerNotFound
	}
	if amount.GreaterThan(customer.Balance) {
		return nil, store.ErrRepaymentExceedsBalance
	}

	customer.Balance = customer.Balance.Sub(amount)
	s.customers[customerID] = customer

	tx := domain.Transaction{
		ID:           xid.New("txn"),
		Type:         domain.TxTypeRepayment,
		Amount:       amount,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		CreatedAt:    time.Now().UTC(),
	}
	s.transactions = slices.Insert(s.transactions, 0, tx)
	s.snapshotLocked(ctx)

	created := tx
	return &created, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, description *string, amount *decimal.Decimal) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, store.ErrTransactionNotFound
	}
	// Mutate a copy so a rejected field never leaves a half-applied edit in
	// the ledger.
	tx := s.transactions[idx]
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
	s.transactions[idx] = tx
	s.snapshotLocked(ctx)

	updated := tx
	return &updated, nil
}

// DeleteTransaction applies the exact inverse of the transaction before
// removing it from the ledger:
//
//	sale      — stock restored; credit sale also reduces the customer balance
//	repayment — customer balance restored
//	stock     — stock reduced by the logged quantity, no guard
//	expense   — ledger removal only
func (s *Store) DeleteTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, store.ErrTransactionNotFound
	}
	tx := s.transactions[idx]

	switch tx.Type {
	case domain.TxTypeSale:
		s.stock[tx.FuelType] = s.stock[tx.FuelType].Add(tx.Quantity)
		if tx.IsCredit && tx.CustomerID != "" {
			if customer, exists := s.customers[tx.CustomerID]; exists {
				customer.Balance = customer.Balance.Sub(tx.Amount)
				if customer.Balance.IsNegative() {
					customer.Balance = decimal.Zero
				}
				s.customers[tx.CustomerID] = customer
			}
		}
	case domain.TxTypeRepayment:
		if customer, exists := s.customers[tx.CustomerID]; exists {
			customer.Balance = customer.Balance.Add(tx.Amount)
			s.customers[tx.CustomerID] = customer
		}
	case domain.TxTypeStock:
		s.stock[tx.FuelType] = s.stock[tx.FuelType].Sub(tx.Quantity)
	case domain.TxTypeExpense:
		// no balance effect
	}

	s.transactions = slices.Delete(s.transactions, idx, idx+1)
	s.snapshotLocked(ctx)

	deleted := tx
	return &deleted, nil
}

func (s *Store) indexOfLocked(id string) int {
	return slices.IndexFunc(s.transactions, func(tx domain.Transaction) bool {
		return tx.ID == id
	})
}

func (s *Store) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, store.ErrTransactionNotFound
	}
	tx := s.transactions[idx]
	return &tx, nil
}

func (s *Store) ListTransactions(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if !within(tx.CreatedAt, from, to) {
			continue
		}
		result = append(result, tx)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.customerListLocked(), nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrCustomerNotFound
	}
	found := customer
	return &found, nil
}

func (s *Store) RenameCustomer(ctx context.Context, id string, name string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, store.ErrInvalidInput
	}
	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrCustomerNotFound
	}
	// Renaming onto another customer's name would split future credit sales
	// between two accounts.
	for _, other := range s.customers {
		if other.ID != id && s.match(other.Name, name) {
			return nil, store.ErrInvalidInput
		}
	}

	customer.Name = name
	s.customers[id] = customer
	for i := range s.transactions {
		if s.transactions[i].CustomerID == id {
			s.transactions[i].CustomerName = name
		}
	}
	s.snapshotLocked(ctx)

	renamed := customer
	return &renamed, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[id]; !exists {
		return store.ErrCustomerNotFound
	}
	delete(s.customers, id)
	// Ledger entries survive unlinked; their balance effects are not reversed.
	for i := range s.transactions {
		if s.transactions[i].CustomerID == id {
			s.transactions[i].CustomerID = ""
			s.transactions[i].CustomerName = ""
		}
	}
	s.snapshotLocked(ctx)
	return nil
}

func (s *Store) GetDailySummary(_ context.Context, from time.Time, to time.Time) (domain.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.DailySummary{
		TotalSales:    decimal.Zero,
		CreditSales:   decimal.Zero,
		CashSales:     decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetRevenue:    decimal.Zero,
		CreditDue:     decimal.Zero,
	}
	for _, tx := range s.transactions {
		if !within(tx.CreatedAt, from, to) {
			continue
		}
		summary.TransactionCount++
		switch tx.Type {
		case domain.TxTypeSale:
			summary.TotalSales = summary.TotalSales.Add(tx.Amount)
			if tx.IsCredit {
				summary.CreditSales = summary.CreditSales.Add(tx.Amount)
			}
		case domain.TxTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
		}
	}
	summary.CashSales = summary.TotalSales.Sub(summary.CreditSales)
	summary.NetRevenue = summary.TotalSales.Sub(summary.CreditSales).Sub(summary.TotalExpenses)
	// Credit due is all-time, not windowed.
	summary.CreditDue = s.creditDueLocked()
	return summary, nil
}

func (s *Store) GetCreditDue(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creditDueLocked(), nil
}

func (s *Store) creditDueLocked() decimal.Decimal {
	due := decimal.Zero
	for _, c := range s.customers {
		due = due.Add(c.Balance)
	}
	return due
}

func within(t time.Time, from time.Time, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

