package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FuelType string

const (
	FuelPetrol FuelType = "petrol"
	FuelDiesel FuelType = "diesel"
)

// KnownFuelTypes lists the catalog in display order.
func KnownFuelTypes() []FuelType {
	return []FuelType{FuelPetrol, FuelDiesel}
}

func ValidFuelType(ft FuelType) bool {
	switch ft {
	case FuelPetrol, FuelDiesel:
		return true
	}
	return false
}

const (
	TxTypeSale      = "sale"
	TxTypeExpense   = "expense"
	TxTypeStock     = "stock"
	TxTypeRepayment = "repayment"
)

type Transaction struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	FuelType     FuelType        `json:"fuel_type,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
	IsCredit     bool            `json:"is_credit"`
	CustomerID   string          `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type Customer struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

type FuelStatus struct {
	FuelType       FuelType        `json:"fuel_type"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	StockLiters    decimal.Decimal `json:"stock_liters"`
	CapacityLiters decimal.Decimal `json:"capacity_liters"`
}

type SaleRequest struct {
	FuelType     FuelType        `json:"fuel_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	IsCredit     bool            `json:"is_credit"`
	CustomerName string          `json:"customer_name,omitempty"`
}

type SaleResponse struct {
	Transaction    Transaction     `json:"transaction"`
	RemainingStock decimal.Decimal `json:"remaining_stock"`
}

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type ExpenseUpdateRequest struct {
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

type StockAddRequest struct {
	FuelType    FuelType        `json:"fuel_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Description string          `json:"description,omitempty"`
}

type StockLevelsRequest struct {
	Levels map[FuelType]decimal.Decimal `json:"levels"`
}

type StockLevelsResponse struct {
	Adjustments []Transaction `json:"adjustments"`
	Status      []FuelStatus  `json:"status"`
}

type RepaymentRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type PriceUpdateRequest struct {
	Prices map[FuelType]decimal.Decimal `json:"prices"`
}

type RenameCustomerRequest struct {
	Name string `json:"name"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
}

type DailySummary struct {
	Date             string          `json:"date"`
	TransactionCount int64           `json:"transaction_count"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	CreditSales      decimal.Decimal `json:"credit_sales"`
	CashSales        decimal.Decimal `json:"cash_sales"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	NetRevenue       decimal.Decimal `json:"net_revenue"`
	CreditDue        decimal.Decimal `json:"credit_due"`
}
