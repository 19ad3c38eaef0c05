// Package service is the reconciliation engine: it validates input, delegates
// composite mutations to the repository (which applies them atomically), and
// keeps the cached daily summary consistent by invalidating it after every
// ledger change.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pumpkhata/backend/internal/cache"
	"pumpkhata/backend/internal/domain"
	"pumpkhata/backend/internal/store"
)

// Notifier receives operator-facing messages after an operation settles
// (the toast surface in the UI). Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, message string) {
	log.Printf("[notify] %s", message)
}

const defaultSummaryTTL = 5 * time.Minute

type Service struct {
	repo       store.Repository
	summaries  cache.SummaryCache
	notifier   Notifier
	summaryTTL time.Duration
}

func New(repo store.Repository, summaries cache.SummaryCache, notifier Notifier) *Service {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{
		repo:       repo,
		summaries:  summaries,
		notifier:   notifier,
		summaryTTL: defaultSummaryTTL,
	}
}

// WithSummaryTTL overrides the cache lifetime for computed daily summaries.
func (s *Service) WithSummaryTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.summaryTTL = ttl
	}
	return s
}

func (s *Service) ListFuelPrices(ctx context.Context) (map[domain.FuelType]decimal.Decimal, error) {
	return s.repo.GetPrices(ctx)
}

func (s *Service) UpdateFuelPrices(ctx context.Context, req domain.PriceUpdateRequest) (map[domain.FuelType]decimal.Decimal, error) {
	if len(req.Prices) == 0 {
		return nil, store.ErrInvalidInput
	}
	for ft, p := range req.Prices {
		if !domain.ValidFuelType(ft) || !p.IsPositive() {
			return nil, store.ErrInvalidInput
		}
	}
	if err := s.repo.SetPrices(ctx, req.Prices); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, "fuel prices updated")
	return s.repo.GetPrices(ctx)
}

func (s *Service) FuelStatus(ctx context.Context) ([]domain.FuelStatus, error) {
	return s.repo.GetFuelStatus(ctx)
}

func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleResponse, error) {
	if !domain.ValidFuelType(req.FuelType) || !req.Quantity.IsPositive() {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.IsCredit && req.CustomerName == "" {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}

	resp, err := s.repo.CreateSale(ctx, req.FuelType, req.Quantity, req.IsCredit, req.CustomerName)
	if err != nil {
		return domain.SaleResponse{}, fmt.Errorf("record sale: %w", err)
	}
	s.invalidateSummary(ctx, resp.Transaction.CreatedAt)

	if req.IsCredit {
		s.notifier.Notify(ctx, fmt.Sprintf("credit sale of %s L %s to %s", req.Quantity.String(), req.FuelType, resp.Transaction.CustomerName))
	} else {
		s.notifier.Notify(ctx, fmt.Sprintf("sale of %s L %s recorded", req.Quantity.String(), req.FuelType))
	}
	return *resp, nil
}

func (s *Service) RecordExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Transaction, error) {
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" || !req.Amount.IsPositive() {
		return domain.Transaction{}, store.ErrInvalidInput
	}

	tx, err := s.repo.CreateExpense(ctx, req.Description, req.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("record expense: %w", err)
	}
	s.invalidateSummary(ctx, tx.CreatedAt)
	s.notifier.Notify(ctx, fmt.Sprintf("expense recorded: %s", tx.Description))
	return *tx, nil
}

func (s *Service) AddStock(ctx context.Context, req domain.StockAddRequest) (domain.Transaction, error) {
	if !domain.ValidFuelType(req.FuelType) || !req.Quantity.IsPositive() {
		return domain.Transaction{}, store.ErrInvalidInput
	}

	tx, err := s.repo.AddStock(ctx, req.FuelType, req.Quantity, req.Description)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("add stock: %w", err)
	}
	s.invalidateSummary(ctx, tx.CreatedAt)
	s.warnIfOverCapacity(ctx, req.FuelType)
	return *tx, nil
}

func (s *Service) SetStockLevels(ctx context.Context, req domain.StockLevelsRequest) (domain.StockLevelsResponse, error) {
	if len(req.Levels) == 0 {
		return domain.StockLevelsResponse{}, store.ErrInvalidInput
	}
	for ft, level := range req.Levels {
		if !domain.ValidFuelType(ft) || level.IsNegative() {
			return domain.StockLevelsResponse{}, store.ErrInvalidInput
		}
	}

	adjustments, err := s.repo.SetStockLevels(ctx, req.Levels)
	if err != nil {
		return domain.StockLevelsResponse{}, fmt.Errorf("set stock levels: %w", err)
	}
	if len(adjustments) > 0 {
		s.invalidateSummary(ctx, adjustments[0].CreatedAt)
	}
	for ft := range req.Levels {
		s.warnIfOverCapacity(ctx, ft)
	}

	status, err := s.repo.GetFuelStatus(ctx)
	if err != nil {
		return domain.StockLevelsResponse{}, err
	}
	return domain.StockLevelsResponse{Adjustments: adjustments, Status: status}, nil
}

func (s *Service) warnIfOverCapacity(ctx context.Context, fuelType domain.FuelType) {
	status, err := s.repo.GetFuelStatus(ctx)
	if err != nil {
		return
	}
	for _, fs := range status {
		if fs.FuelType == fuelType && fs.StockLiters.GreaterThan(fs.CapacityLiters) {
			s.notifier.Notify(ctx, fmt.Sprintf("warning: %s stock %s L exceeds tank capacity %s L", fuelType, fs.StockLiters.String(), fs.CapacityLiters.String()))
		}
	}
}

func (s *Service) RecordRepayment(ctx context.Context, req domain.RepaymentRequest) (domain.Transaction, error) {
	if strings.TrimSpace(req.CustomerID) == "" || !req.Amount.IsPositive() {
		return domain.Transaction{}, store.ErrInvalidInput
	}

	tx, err := s.repo.CreateRepayment(ctx, req.CustomerID, req.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("record repayment: %w", err)
	}
	s.invalidateSummary(ctx, tx.CreatedAt)
	s.notifier.Notify(ctx, fmt.Sprintf("repayment of %s received from %s", req.Amount.String(), tx.CustomerName))
	return *tx, nil
}

func (s *Service) UpdateExpense(ctx context.Context, id string, req domain.ExpenseUpdateRequest) (domain.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Transaction{}, store.ErrInvalidInput
	}
	if req.Description == nil && req.Amount == nil {
		return domain.Transaction{}, store.ErrInvalidInput
	}

	tx, err := s.repo.UpdateExpense(ctx, id, req.Description, req.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("update expense: %w", err)
	}
	s.invalidateSummary(ctx, tx.CreatedAt)
	return *tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Transaction{}, store.ErrInvalidInput
	}

	tx, err := s.repo.DeleteTransaction(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidateSummary(ctx, tx.CreatedAt)
	s.notifier.Notify(ctx, fmt.Sprintf("%s transaction deleted, balances restored", tx.Type))
	return *tx, nil
}

func (s *Service) ListTransactions(ctx context.Context, date string, limit int) ([]domain.Transaction, error) {
	from, to, err := dayWindow(date)
	if err != nil {
		return nil, store.ErrInvalidInput
	}
	return s.repo.ListTransactions(ctx, from, to, limit)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) RenameCustomer(ctx context.Context, id string, req domain.RenameCustomerRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if strings.TrimSpace(id) == "" || req.Name == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}

	customer, err := s.repo.RenameCustomer(ctx, id, req.Name)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("rename customer: %w", err)
	}
	return *customer, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	s.invalidateSummary(ctx, time.Now())
	return nil
}

// DailySummary returns the aggregates for one local day. The result is
// recomputed from the ledger on every cache miss, never stored as state.
func (s *Service) DailySummary(ctx context.Context, date string) (domain.DailySummary, error) {
	if date == "" {
		date = time.Now().Local().Format("2006-01-02")
	}
	from, to, err := dayWindow(date)
	if err != nil {
		return domain.DailySummary{}, store.ErrInvalidInput
	}

	key := summaryKey(date)
	if cached, ok, err := s.summaries.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: summary cache get %s: %v", key, err)
	} else if ok {
		// CreditDue is all-time, not windowed, so a cached day can hold a
		// figure that later mutations moved. Read it fresh on every hit.
		due, err := s.repo.GetCreditDue(ctx)
		if err != nil {
			return domain.DailySummary{}, fmt.Errorf("daily summary: %w", err)
		}
		cached.CreditDue = due
		return *cached, nil
	}

	summary, err := s.repo.GetDailySummary(ctx, from, to)
	if err != nil {
		return domain.DailySummary{}, fmt.Errorf("daily summary: %w", err)
	}
	summary.Date = date

	if err := s.summaries.Set(ctx, key, &summary, s.summaryTTL); err != nil {
		log.Printf("[service] WARN: summary cache set %s: %v", key, err)
	}
	return summary, nil
}

func (s *Service) invalidateSummary(ctx context.Context, at time.Time) {
	key := summaryKey(at.Local().Format("2006-01-02"))
	if err := s.summaries.Invalidate(ctx, key); err != nil {
		log.Printf("[service] WARN: summary cache invalidate %s: %v", key, err)
	}
}

func summaryKey(date string) string {
	return "summary:" + date
}

// dayWindow converts a YYYY-MM-DD date into [midnight, midnight+24h) in the
// station's local time. An empty date means no window.
func dayWindow(date string) (time.Time, time.Time, error) {
	if date == "" {
		return time.Time{}, time.Time{}, nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return day, day.Add(24 * time.Hour), nil
}
