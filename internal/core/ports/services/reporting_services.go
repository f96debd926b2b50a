package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/dto"
)

// ReportingSvcFacade derives the admin overview from the expense collection.
type ReportingSvcFacade interface {
	// Overview aggregates counts and amounts by status and category and
	// collects the most recent workflow activity.
	Overview(ctx context.Context, recentLimit int) (*dto.OverviewResponse, error)
}
