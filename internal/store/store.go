package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pumpkhata/backend/internal/domain"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrRepaymentExceedsBalance = errors.New("repayment exceeds balance")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
)

// CustomerMatcher decides whether a credit sale under candidate name belongs
// to an existing customer record.
type CustomerMatcher func(existingName, candidateName string) bool

// DefaultCustomerMatcher folds case, so "ali khan" and "Ali Khan" are the
// same account.
func DefaultCustomerMatcher(existingName, candidateName string) bool {
	return strings.EqualFold(strings.TrimSpace(existingName), strings.TrimSpace(candidateName))
}

// Repository is the bookkeeping state: fuel prices and stock, the
// transaction ledger, and customer credit balances. Composite mutations
// (guard, balance change, ledger append) are atomic within a single call.
type Repository interface {
	GetPrices(ctx context.Context) (map[domain.FuelType]decimal.Decimal, error)
	SetPrices(ctx context.Context, prices map[domain.FuelType]decimal.Decimal) error
	GetFuelStatus(ctx context.Context) ([]domain.FuelStatus, error)

	CreateSale(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, isCredit bool, customerName string) (*domain.SaleResponse, error)
	CreateExpense(ctx context.Context, description string, amount decimal.Decimal) (*domain.Transaction, error)
	AddStock(ctx context.Context, fuelType domain.FuelType, quantity decimal.Decimal, description string) (*domain.Transaction, error)
	SetStockLevels(ctx context.Context, levels map[domain.FuelType]decimal.Decimal) ([]domain.Transaction, error)
	CreateRepayment(ctx context.Context, customerID string, amount decimal.Decimal) (*domain.Transaction, error)
	UpdateExpense(ctx context.Context, id string, description *string, amount *decimal.Decimal) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*domain.Transaction, error)

	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.Transaction, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	RenameCustomer(ctx context.Context, id string, name string) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	GetDailySummary(ctx context.Context, from time.Time, to time.Time) (domain.DailySummary, error)
	GetCreditDue(ctx context.Context) (decimal.Decimal, error)
}
