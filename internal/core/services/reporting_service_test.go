package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo  *MockExpenseRepository
	mockCategoryRepo *MockCategoryReader
	service          portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockCategoryRepo = new(MockCategoryReader)
	suite.service = services.NewReportingService(suite.mockExpenseRepo, suite.mockCategoryRepo)
}

func (suite *ReportingServiceTestSuite) seed(expenses []domain.Expense, categories []domain.Category) {
	suite.mockExpenseRepo.FindExpensesFn = func(ctx context.Context, filter portsrepo.ExpenseFilter) ([]domain.Expense, error) {
		return expenses, nil
	}
	suite.mockCategoryRepo.On("FindCategories", context.Background()).Return(categories, nil).Once()
}

func (suite *ReportingServiceTestSuite) TestOverview_Aggregates() {
	now := time.Now().UTC()
	travel := domain.Category{CategoryID: "c-travel", Name: "Travel"}
	supplies := domain.Category{CategoryID: "c-supplies", Name: "Office Supplies"}

	expenses := []domain.Expense{
		{
			ExpenseID:  "e1",
			CategoryID: travel.CategoryID,
			Amount:     decimal.RequireFromString("100.00"),
			Status:     domain.StatusApproved,
			History: []domain.HistoryItem{
				{ActorName: "Ria", Action: domain.ActionSubmitted, Timestamp: now.Add(-3 * time.Hour)},
				{ActorName: "System", Action: domain.ActionAutoApproved, Timestamp: now.Add(-3 * time.Hour)},
			},
		},
		{
			ExpenseID:  "e2",
			CategoryID: travel.CategoryID,
			Amount:     decimal.RequireFromString("250.50"),
			Status:     domain.StatusPendingVerification,
			History: []domain.HistoryItem{
				{ActorName: "Sam", Action: domain.ActionSubmitted, Timestamp: now.Add(-1 * time.Hour)},
			},
		},
		{
			ExpenseID:  "e3",
			CategoryID: supplies.CategoryID,
			Amount:     decimal.RequireFromString("49.50"),
			Status:     domain.StatusRejected,
			History: []domain.HistoryItem{
				{ActorName: "Sam", Action: domain.ActionSubmitted, Timestamp: now.Add(-2 * time.Hour)},
				{ActorName: "Verna", Action: domain.ActionRejected, Timestamp: now.Add(-30 * time.Minute)},
			},
		},
	}
	suite.seed(expenses, []domain.Category{travel, supplies})

	overview, err := suite.service.Overview(context.Background(), 0)

	suite.Require().NoError(err)
	suite.Equal(3, overview.TotalCount)
	suite.True(overview.TotalAmount.Equal(decimal.RequireFromString("400.00")))

	// Status rows come in fixed workflow order, zero rows included.
	suite.Require().Len(overview.ByStatus, 4)
	suite.Equal(string(domain.StatusPendingVerification), overview.ByStatus[0].Status)
	suite.Equal(1, overview.ByStatus[0].Count)
	suite.Equal(string(domain.StatusPendingApproval), overview.ByStatus[1].Status)
	suite.Equal(0, overview.ByStatus[1].Count)
	suite.Equal(string(domain.StatusApproved), overview.ByStatus[2].Status)
	suite.True(overview.ByStatus[2].Amount.Equal(decimal.RequireFromString("100.00")))
	suite.Equal(string(domain.StatusRejected), overview.ByStatus[3].Status)

	// Category rows are sorted by name.
	suite.Require().Len(overview.ByCategory, 2)
	suite.Equal("Office Supplies", overview.ByCategory[0].CategoryName)
	suite.Equal("Travel", overview.ByCategory[1].CategoryName)
	suite.Equal(2, overview.ByCategory[1].Count)
	suite.True(overview.ByCategory[1].Amount.Equal(decimal.RequireFromString("350.50")))

	// Activity is flattened across expenses, most recent first.
	suite.Require().Len(overview.RecentActivity, 5)
	suite.Equal(domain.ActionRejected, overview.RecentActivity[0].Action)
	suite.Equal("Verna", overview.RecentActivity[0].ActorName)
	suite.Equal(domain.ActionSubmitted, overview.RecentActivity[1].Action)
	suite.Equal("Sam", overview.RecentActivity[1].ActorName)
}

func (suite *ReportingServiceTestSuite) TestOverview_RecentActivityTruncated() {
	now := time.Now().UTC()
	var history []domain.HistoryItem
	for i := 0; i < 15; i++ {
		history = append(history, domain.HistoryItem{
			ActorName: "Sam",
			Action:    domain.ActionSubmitted,
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	expenses := []domain.Expense{{ExpenseID: "e1", CategoryID: "c1", Amount: decimal.Zero, History: history}}
	suite.seed(expenses, nil)

	overview, err := suite.service.Overview(context.Background(), 3)

	suite.Require().NoError(err)
	suite.Len(overview.RecentActivity, 3)
}

func (suite *ReportingServiceTestSuite) TestOverview_DefaultRecentLimit() {
	now := time.Now().UTC()
	var history []domain.HistoryItem
	for i := 0; i < 15; i++ {
		history = append(history, domain.HistoryItem{Action: domain.ActionSubmitted, Timestamp: now.Add(-time.Duration(i) * time.Minute)})
	}
	expenses := []domain.Expense{{ExpenseID: "e1", CategoryID: "c1", Amount: decimal.Zero, History: history}}
	suite.seed(expenses, nil)

	overview, err := suite.service.Overview(context.Background(), 0)

	suite.Require().NoError(err)
	suite.Len(overview.RecentActivity, 10)
}

func (suite *ReportingServiceTestSuite) TestOverview_Empty() {
	suite.seed(nil, nil)

	overview, err := suite.service.Overview(context.Background(), 0)

	suite.Require().NoError(err)
	suite.Equal(0, overview.TotalCount)
	suite.True(overview.TotalAmount.IsZero())
	suite.Len(overview.ByStatus, 4)
	suite.Empty(overview.ByCategory)
	suite.Empty(overview.RecentActivity)
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
