package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

const defaultRecentActivityLimit = 10

// reportingService derives the admin overview from the expense collection on
// demand; nothing is precomputed or cached.
type reportingService struct {
	expenseRepo  portsrepo.ExpenseReader
	categoryRepo portsrepo.CategoryReader
}

// NewReportingService creates the reporting service.
func NewReportingService(expenseRepo portsrepo.ExpenseReader, categoryRepo portsrepo.CategoryReader) portssvc.ReportingSvcFacade {
	return &reportingService{expenseRepo: expenseRepo, categoryRepo: categoryRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

func (s *reportingService) Overview(ctx context.Context, recentLimit int) (*dto.OverviewResponse, error) {
	if recentLimit <= 0 {
		recentLimit = defaultRecentActivityLimit
	}

	expenses, err := s.expenseRepo.FindExpenses(ctx, portsrepo.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for overview: %w", err)
	}
	categories, err := s.categoryRepo.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories for overview: %w", err)
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.CategoryID] = c.Name
	}

	statusOrder := []domain.ExpenseStatus{
		domain.StatusPendingVerification,
		domain.StatusPendingApproval,
		domain.StatusApproved,
		domain.StatusRejected,
	}
	byStatus := make(map[domain.ExpenseStatus]*dto.StatusBreakdown, len(statusOrder))
	for _, status := range statusOrder {
		byStatus[status] = &dto.StatusBreakdown{Status: string(status), Amount: decimal.Zero}
	}
	byCategory := make(map[string]*dto.CategoryBreakdown)

	overview := &dto.OverviewResponse{TotalAmount: decimal.Zero}
	var activity []dto.ActivityItem

	for i := range expenses {
		e := &expenses[i]
		overview.TotalCount++
		overview.TotalAmount = overview.TotalAmount.Add(e.Amount)

		if sb, ok := byStatus[e.Status]; ok {
			sb.Count++
			sb.Amount = sb.Amount.Add(e.Amount)
		}

		cb, ok := byCategory[e.CategoryID]
		if !ok {
			cb = &dto.CategoryBreakdown{
				CategoryID:   e.CategoryID,
				CategoryName: categoryNames[e.CategoryID],
				Amount:       decimal.Zero,
			}
			byCategory[e.CategoryID] = cb
		}
		cb.Count++
		cb.Amount = cb.Amount.Add(e.Amount)

		for _, h := range e.History {
			activity = append(activity, dto.ActivityItem{
				ExpenseID:       e.ExpenseID,
				ReferenceNumber: e.ReferenceNumber,
				ActorName:       h.ActorName,
				Action:          h.Action,
				Timestamp:       h.Timestamp,
			})
		}
	}

	for _, status := range statusOrder {
		overview.ByStatus = append(overview.ByStatus, *byStatus[status])
	}

	overview.ByCategory = make([]dto.CategoryBreakdown, 0, len(byCategory))
	for _, cb := range byCategory {
		overview.ByCategory = append(overview.ByCategory, *cb)
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		return overview.ByCategory[i].CategoryName < overview.ByCategory[j].CategoryName
	})

	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	if len(activity) > recentLimit {
		activity = activity[:recentLimit]
	}
	overview.RecentActivity = activity

	return overview, nil
}
