package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusBreakdown aggregates expense count and amount for one workflow status.
type StatusBreakdown struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryBreakdown aggregates expense count and amount for one category.
type CategoryBreakdown struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Count        int             `json:"count"`
	Amount       decimal.Decimal `json:"amount"`
}

// ActivityItem is one recent workflow event for the overview feed.
type ActivityItem struct {
	ExpenseID       string    `json:"expenseId"`
	ReferenceNumber string    `json:"referenceNumber"`
	ActorName       string    `json:"actorName"`
	Action          string    `json:"action"`
	Timestamp       time.Time `json:"timestamp"`
}

// OverviewResponse is the admin overview: totals by status and category plus
// the most recent workflow activity across all expenses.
type OverviewResponse struct {
	TotalCount     int                 `json:"totalCount"`
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	ByStatus       []StatusBreakdown   `json:"byStatus"`
	ByCategory     []CategoryBreakdown `json:"byCategory"`
	RecentActivity []ActivityItem      `json:"recentActivity"`
}
