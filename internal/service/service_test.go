package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pumpkhata/backend/internal/cache"
	"pumpkhata/backend/internal/domain"
	"pumpkhata/backend/internal/store"
	"pumpkhata/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.New(), cache.NoopSummaryCache{}, LogNotifier{})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedStock(t *testing.T, svc *Service, petrol, diesel string) {
	t.Helper()
	_, err := svc.SetStockLevels(context.Background(), domain.StockLevelsRequest{
		Levels: map[domain.FuelType]decimal.Decimal{
			domain.FuelPetrol: dec(petrol),
			domain.FuelDiesel: dec(diesel),
		},
	})
	if err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}
}

func stockOf(t *testing.T, svc *Service, fuelType domain.FuelType) decimal.Decimal {
	t.Helper()
	status, err := svc.FuelStatus(context.Background())
	if err != nil {
		t.Fatalf("fuel status failed: %v", err)
	}
	for _, fs := range status {
		if fs.FuelType == fuelType {
			return fs.StockLiters
		}
	}
	t.Fatalf("fuel type %s missing from status", fuelType)
	return decimal.Zero
}

func TestRecordSaleComputesAmountAndDecrementsStock(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "500")

	resp, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelPetrol,
		Quantity: dec("10"),
	})
	if err != nil {
		t.Fatalf("record sale failed: %v", err)
	}
	if !resp.Transaction.Amount.Equal(dec("1025.00")) {
		t.Fatalf("expected amount 1025.00 at default petrol price, got %s", resp.Transaction.Amount.String())
	}
	if !resp.RemainingStock.Equal(dec("990")) {
		t.Fatalf("expected 990 L remaining, got %s", resp.RemainingStock.String())
	}
	if resp.Transaction.IsCredit {
		t.Fatalf("cash sale must not be flagged as credit")
	}
}

func TestRecordSaleInsufficientStockAbortsWithoutMutation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "50")

	before, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}

	_, err = svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelDiesel,
		Quantity: dec("60"),
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if got := stockOf(t, svc, domain.FuelDiesel); !got.Equal(dec("50")) {
		t.Fatalf("expected diesel stock unchanged at 50, got %s", got.String())
	}
	after, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("rejected sale must not append to the ledger")
	}
}

func TestRecordSaleValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "100", "100")

	cases := []domain.SaleRequest{
		{FuelType: "kerosene", Quantity: dec("5")},
		{FuelType: domain.FuelPetrol, Quantity: dec("0")},
		{FuelType: domain.FuelPetrol, Quantity: dec("-3")},
		{FuelType: domain.FuelPetrol, Quantity: dec("5"), IsCredit: true, CustomerName: "  "},
	}
	for i, req := range cases {
		if _, err := svc.RecordSale(ctx, req); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestCreditSaleMergesCustomerByNameCaseInsensitive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	first, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType:     domain.FuelDiesel,
		Quantity:     dec("5"),
		IsCredit:     true,
		CustomerName: "Ali Khan",
	})
	if err != nil {
		t.Fatalf("first credit sale failed: %v", err)
	}
	second, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType:     domain.FuelDiesel,
		Quantity:     dec("5"),
		IsCredit:     true,
		CustomerName: "ali khan",
	})
	if err != nil {
		t.Fatalf("second credit sale failed: %v", err)
	}
	if first.Transaction.CustomerID != second.Transaction.CustomerID {
		t.Fatalf("expected both sales on one customer, got %s and %s",
			first.Transaction.CustomerID, second.Transaction.CustomerID)
	}

	customers, err := svc.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("list customers failed: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("expected one merged customer, got %d", len(customers))
	}
	if customers[0].Name != "Ali Khan" {
		t.Fatalf("expected first-seen name kept, got %q", customers[0].Name)
	}
	// 10 L diesel at 95.80
	if !customers[0].Balance.Equal(dec("958.00")) {
		t.Fatalf("expected balance 958.00, got %s", customers[0].Balance.String())
	}
}

func TestDeleteCreditSaleRestoresStockAndBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType:     domain.FuelPetrol,
		Quantity:     dec("10"),
		IsCredit:     true,
		CustomerName: "Bashir",
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	if _, err := svc.DeleteTransaction(ctx, sale.Transaction.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := stockOf(t, svc, domain.FuelPetrol); !got.Equal(dec("1000")) {
		t.Fatalf("expected petrol stock restored to 1000, got %s", got.String())
	}
	customer, err := svc.GetCustomer(ctx, sale.Transaction.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if !customer.Balance.IsZero() {
		t.Fatalf("expected zero balance after delete, got %s", customer.Balance.String())
	}
}

func TestDeleteRepaymentRestoresBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType:     domain.FuelPetrol,
		Quantity:     dec("10"),
		IsCredit:     true,
		CustomerName: "Chacha Transport",
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	repayment, err := svc.RecordRepayment(ctx, domain.RepaymentRequest{
		CustomerID: sale.Transaction.CustomerID,
		Amount:     dec("500"),
	})
	if err != nil {
		t.Fatalf("repayment failed: %v", err)
	}

	if _, err := svc.DeleteTransaction(ctx, repayment.ID); err != nil {
		t.Fatalf("delete repayment failed: %v", err)
	}

	customer, err := svc.GetCustomer(ctx, sale.Transaction.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if !customer.Balance.Equal(dec("1025.00")) {
		t.Fatalf("expected balance restored to 1025.00, got %s", customer.Balance.String())
	}
}

func TestDeleteStockTransactionRemovesLiters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tx, err := svc.AddStock(ctx, domain.StockAddRequest{
		FuelType: domain.FuelDiesel,
		Quantity: dec("300"),
	})
	if err != nil {
		t.Fatalf("add stock failed: %v", err)
	}
	if got := stockOf(t, svc, domain.FuelDiesel); !got.Equal(dec("300")) {
		t.Fatalf("expected diesel stock 300, got %s", got.String())
	}

	if _, err := svc.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete stock transaction failed: %v", err)
	}
	if got := stockOf(t, svc, domain.FuelDiesel); !got.IsZero() {
		t.Fatalf("expected diesel stock back at 0, got %s", got.String())
	}
}

func TestDeleteExpenseLeavesBalancesAlone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "100", "100")

	tx, err := svc.RecordExpense(ctx, domain.ExpenseRequest{
		Description: "generator diesel",
		Amount:      dec("200"),
	})
	if err != nil {
		t.Fatalf("record expense failed: %v", err)
	}

	if _, err := svc.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete expense failed: %v", err)
	}
	if got := stockOf(t, svc, domain.FuelPetrol); !got.Equal(dec("100")) {
		t.Fatalf("expense delete must not touch stock, got %s", got.String())
	}

	summary, err := svc.DailySummary(ctx, "")
	if err != nil {
		t.Fatalf("daily summary failed: %v", err)
	}
	if !summary.TotalExpenses.IsZero() {
		t.Fatalf("expected zero expenses after delete, got %s", summary.TotalExpenses.String())
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	svc := newTestService()

	_, err := svc.DeleteTransaction(context.Background(), "txn_missing")
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestRepaymentCannotExceedBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType:     domain.FuelDiesel,
		Quantity:     dec("5"),
		IsCredit:     true,
		CustomerName: "Dost Mohammad",
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}
	// 5 L diesel at 95.80 leaves a balance of 479.00.
	_, err = svc.RecordRepayment(ctx, domain.RepaymentRequest{
		CustomerID: sale.Transaction.CustomerID,
		Amount:     dec("600"),
	})
	if !errors.Is(err, store.ErrRepaymentExceedsBalance) {
		t.Fatalf("expected ErrRepaymentExceedsBalance, got %v", err)
	}

	customer, err := svc.GetCustomer(ctx, sale.Transaction.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if !customer.Balance.Equal(dec("479.00")) {
		t.Fatalf("rejected repayment must not change balance, got %s", customer.Balance.String())
	}

	if _, err := svc.RecordRepayment(ctx, domain.RepaymentRequest{
		CustomerID: sale.Transaction.CustomerID,
		Amount:     dec("479.00"),
	}); err != nil {
		t.Fatalf("full repayment failed: %v", err)
	}
	customer, err = svc.GetCustomer(ctx, sale.Transaction.CustomerID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if !customer.Balance.IsZero() {
		t.Fatalf("expected zero balance after full repayment, got %s", customer.Balance.String())
	}
}

func TestRepaymentUnknownCustomer(t *testing.T) {
	svc := newTestService()

	_, err := svc.RecordRepayment(context.Background(), domain.RepaymentRequest{
		CustomerID: "cus_missing",
		Amount:     dec("100"),
	})
	if !errors.Is(err, store.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestUpdateExpenseOnlyTouchesExpenses(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "100", "100")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelPetrol,
		Quantity: dec("1"),
	})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	desc := "rewritten"
	if _, err := svc.UpdateExpense(ctx, sale.Transaction.ID, domain.ExpenseUpdateRequest{Description: &desc}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput editing a sale, got %v", err)
	}

	expense, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Description: "chai", Amount: dec("50")})
	if err != nil {
		t.Fatalf("record expense failed: %v", err)
	}
	amount := dec("75")
	updated, err := svc.UpdateExpense(ctx, expense.ID, domain.ExpenseUpdateRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("update expense failed: %v", err)
	}
	if !updated.Amount.Equal(dec("75")) || updated.Description != "chai" {
		t.Fatalf("unexpected update result: %s %q", updated.Amount.String(), updated.Description)
	}

	zero := dec("0")
	if _, err := svc.UpdateExpense(ctx, expense.ID, domain.ExpenseUpdateRequest{Amount: &zero}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero amount, got %v", err)
	}
}

func TestDailySummaryAggregatesAndIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	if _, err := svc.RecordSale(ctx, domain.SaleRequest{FuelType: domain.FuelPetrol, Quantity: dec("10")}); err != nil {
		t.Fatalf("cash sale failed: %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.SaleRequest{FuelType: domain.FuelDiesel, Quantity: dec("5"), IsCredit: true, CustomerName: "Ejaz"}); err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}
	if _, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Description: "electrician", Amount: dec("200")}); err != nil {
		t.Fatalf("expense failed: %v", err)
	}

	summary, err := svc.DailySummary(ctx, "")
	if err != nil {
		t.Fatalf("daily summary failed: %v", err)
	}
	if !summary.TotalSales.Equal(dec("1504.00")) {
		t.Fatalf("expected total sales 1504.00, got %s", summary.TotalSales.String())
	}
	if !summary.CreditSales.Equal(dec("479.00")) {
		t.Fatalf("expected credit sales 479.00, got %s", summary.CreditSales.String())
	}
	if !summary.CashSales.Equal(dec("1025.00")) {
		t.Fatalf("expected cash sales 1025.00, got %s", summary.CashSales.String())
	}
	if !summary.TotalExpenses.Equal(dec("200")) {
		t.Fatalf("expected expenses 200, got %s", summary.TotalExpenses.String())
	}
	// 1504 - 479 - 200
	if !summary.NetRevenue.Equal(dec("825.00")) {
		t.Fatalf("expected net revenue 825.00, got %s", summary.NetRevenue.String())
	}
	if !summary.CreditDue.Equal(dec("479.00")) {
		t.Fatalf("expected credit due 479.00, got %s", summary.CreditDue.String())
	}

	again, err := svc.DailySummary(ctx, "")
	if err != nil {
		t.Fatalf("second summary failed: %v", err)
	}
	if !again.TotalSales.Equal(summary.TotalSales) || !again.NetRevenue.Equal(summary.NetRevenue) ||
		!again.CreditDue.Equal(summary.CreditDue) || again.TransactionCount != summary.TransactionCount {
		t.Fatalf("recomputing over an unchanged ledger must yield identical aggregates")
	}
}

// mapSummaryCache is an in-process stand-in for the redis cache so tests can
// exercise the hit path.
type mapSummaryCache struct {
	entries map[string]domain.DailySummary
}

func newMapSummaryCache() *mapSummaryCache {
	return &mapSummaryCache{entries: make(map[string]domain.DailySummary)}
}

func (c *mapSummaryCache) Get(_ context.Context, key string) (*domain.DailySummary, bool, error) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (c *mapSummaryCache) Set(_ context.Context, key string, value *domain.DailySummary, _ time.Duration) error {
	c.entries[key] = *value
	return nil
}

func (c *mapSummaryCache) Invalidate(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestDailySummaryCreditDueFreshOnCacheHit(t *testing.T) {
	summaries := newMapSummaryCache()
	svc := New(memory.New(), summaries, LogNotifier{})
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	// Cache yesterday's summary, then move the all-time credit figure with a
	// sale recorded today. Yesterday's key is not invalidated.
	yesterday := time.Now().AddDate(0, 0, -1).Local().Format("2006-01-02")
	before, err := svc.DailySummary(ctx, yesterday)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !before.CreditDue.IsZero() {
		t.Fatalf("expected zero credit due before the sale, got %s", before.CreditDue.String())
	}

	if _, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelDiesel, Quantity: dec("5"), IsCredit: true, CustomerName: "Khalid",
	}); err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	after, err := svc.DailySummary(ctx, yesterday)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !after.CreditDue.Equal(dec("479.00")) {
		t.Fatalf("cached day must report current credit due 479.00, got %s", after.CreditDue.String())
	}
	// The windowed figures for yesterday stay what was cached.
	if !after.TotalSales.IsZero() {
		t.Fatalf("yesterday's windowed sales should be zero, got %s", after.TotalSales.String())
	}
}

func TestSetStockLevelsLogsOnlyChanges(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	resp, err := svc.SetStockLevels(ctx, domain.StockLevelsRequest{
		Levels: map[domain.FuelType]decimal.Decimal{domain.FuelPetrol: dec("1000")},
	})
	if err != nil {
		t.Fatalf("set stock levels failed: %v", err)
	}
	if len(resp.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %d", len(resp.Adjustments))
	}
	if resp.Adjustments[0].Type != domain.TxTypeStock || !resp.Adjustments[0].Quantity.Equal(dec("1000")) {
		t.Fatalf("unexpected adjustment: %+v", resp.Adjustments[0])
	}

	resp, err = svc.SetStockLevels(ctx, domain.StockLevelsRequest{
		Levels: map[domain.FuelType]decimal.Decimal{domain.FuelPetrol: dec("1000")},
	})
	if err != nil {
		t.Fatalf("idempotent set failed: %v", err)
	}
	if len(resp.Adjustments) != 0 {
		t.Fatalf("setting an unchanged level must not log, got %d adjustments", len(resp.Adjustments))
	}

	_, err = svc.SetStockLevels(ctx, domain.StockLevelsRequest{
		Levels: map[domain.FuelType]decimal.Decimal{domain.FuelPetrol: dec("-5")},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative level, got %v", err)
	}
}

func TestUpdateFuelPricesAffectsOnlyFutureSales(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	before, err := svc.RecordSale(ctx, domain.SaleRequest{FuelType: domain.FuelPetrol, Quantity: dec("10")})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	if _, err := svc.UpdateFuelPrices(ctx, domain.PriceUpdateRequest{
		Prices: map[domain.FuelType]decimal.Decimal{domain.FuelPetrol: dec("110.00")},
	}); err != nil {
		t.Fatalf("price update failed: %v", err)
	}

	after, err := svc.RecordSale(ctx, domain.SaleRequest{FuelType: domain.FuelPetrol, Quantity: dec("10")})
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if !after.Transaction.Amount.Equal(dec("1100.00")) {
		t.Fatalf("expected new price applied, got %s", after.Transaction.Amount.String())
	}

	// The earlier ledger entry keeps its original amount.
	tx, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, entry := range tx {
		if entry.ID == before.Transaction.ID && !entry.Amount.Equal(dec("1025.00")) {
			t.Fatalf("historical sale amount changed to %s", entry.Amount.String())
		}
	}

	if _, err := svc.UpdateFuelPrices(ctx, domain.PriceUpdateRequest{
		Prices: map[domain.FuelType]decimal.Decimal{domain.FuelPetrol: dec("0")},
	}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero price, got %v", err)
	}
	if _, err := svc.UpdateFuelPrices(ctx, domain.PriceUpdateRequest{
		Prices: map[domain.FuelType]decimal.Decimal{"kerosene": dec("80")},
	}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown fuel, got %v", err)
	}
}

func TestRenameCustomerRelabelsLedger(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelPetrol, Quantity: dec("5"), IsCredit: true, CustomerName: "Farid",
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}
	if _, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelPetrol, Quantity: dec("5"), IsCredit: true, CustomerName: "Ghani",
	}); err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	renamed, err := svc.RenameCustomer(ctx, sale.Transaction.CustomerID, domain.RenameCustomerRequest{Name: "Farid Motors"})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "Farid Motors" {
		t.Fatalf("expected renamed customer, got %q", renamed.Name)
	}

	transactions, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, tx := range transactions {
		if tx.CustomerID == sale.Transaction.CustomerID && tx.CustomerName != "Farid Motors" {
			t.Fatalf("ledger entry not relabeled: %q", tx.CustomerName)
		}
	}

	// Taking another customer's name would split future credit sales.
	if _, err := svc.RenameCustomer(ctx, sale.Transaction.CustomerID, domain.RenameCustomerRequest{Name: "ghani"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on name collision, got %v", err)
	}
}

func TestDeleteCustomerUnlinksLedger(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	sale, err := svc.RecordSale(ctx, domain.SaleRequest{
		FuelType: domain.FuelPetrol, Quantity: dec("5"), IsCredit: true, CustomerName: "Habib",
	})
	if err != nil {
		t.Fatalf("credit sale failed: %v", err)
	}

	if err := svc.DeleteCustomer(ctx, sale.Transaction.CustomerID); err != nil {
		t.Fatalf("delete customer failed: %v", err)
	}
	if _, err := svc.GetCustomer(ctx, sale.Transaction.CustomerID); !errors.Is(err, store.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	transactions, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, tx := range transactions {
		if tx.ID == sale.Transaction.ID {
			if tx.CustomerID != "" || tx.CustomerName != "" {
				t.Fatalf("expected unlinked ledger entry, got id %q name %q", tx.CustomerID, tx.CustomerName)
			}
			if !tx.Amount.Equal(dec("512.50")) {
				t.Fatalf("unlinking must not reverse the amount, got %s", tx.Amount.String())
			}
		}
	}
}

func TestTransactionsListedNewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	seedStock(t, svc, "1000", "1000")

	if _, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Description: "first", Amount: dec("10")}); err != nil {
		t.Fatalf("expense failed: %v", err)
	}
	if _, err := svc.RecordExpense(ctx, domain.ExpenseRequest{Description: "second", Amount: dec("20")}); err != nil {
		t.Fatalf("expense failed: %v", err)
	}

	transactions, err := svc.ListTransactions(ctx, "", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(transactions) < 2 {
		t.Fatalf("expected at least two ledger entries, got %d", len(transactions))
	}
	if transactions[0].Description != "second" {
		t.Fatalf("expected newest entry first, got %q", transactions[0].Description)
	}
}
