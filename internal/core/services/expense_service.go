package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
	"github.com/expensehub/expense_approval_app/internal/utils"
)

// expenseService implements submission, the approval state machine and the
// role-scoped queue views.
type expenseService struct {
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	projectRepo  portsrepo.ProjectRepository
	siteRepo     portsrepo.SiteRepository
	userSvc      portssvc.UserReaderSvc
	auditSvc     portssvc.AuditSvcFacade
	notifier     portssvc.NotificationSink
	attachments  portssvc.AttachmentStore
	policy       PolicyEngine
}

// NewExpenseService creates the expense service facade.
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	categoryRepo portsrepo.CategoryReader,
	projectRepo portsrepo.ProjectRepository,
	siteRepo portsrepo.SiteRepository,
	userSvc portssvc.UserReaderSvc,
	auditSvc portssvc.AuditSvcFacade,
	notifier portssvc.NotificationSink,
	attachments portssvc.AttachmentStore,
	policy PolicyEngine,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		projectRepo:  projectRepo,
		siteRepo:     siteRepo,
		userSvc:      userSvc,
		auditSvc:     auditSvc,
		notifier:     notifier,
		attachments:  attachments,
		policy:       policy,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// resolveReferences validates the category/subcategory pairing and the project
// and site references of a submission.
func (s *expenseService) resolveReferences(ctx context.Context, req dto.CreateExpenseRequest) (*domain.Category, *domain.Subcategory, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown category %s", apperrors.ErrValidation, req.CategoryID)
		}
		return nil, nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	var subcategory *domain.Subcategory
	if req.SubcategoryID != "" {
		subcategory = category.FindSubcategory(req.SubcategoryID)
		if subcategory == nil {
			return nil, nil, fmt.Errorf("%w: subcategory %s does not belong to category %s", apperrors.ErrValidation, req.SubcategoryID, req.CategoryID)
		}
	}

	if _, err := s.projectRepo.FindProjectByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown project %s", apperrors.ErrValidation, req.ProjectID)
		}
		return nil, nil, fmt.Errorf("failed to resolve project: %w", err)
	}
	if _, err := s.siteRepo.FindSiteByID(ctx, req.SiteID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown site %s", apperrors.ErrValidation, req.SiteID)
		}
		return nil, nil, fmt.Errorf("failed to resolve site: %w", err)
	}

	return category, subcategory, nil
}

func (s *expenseService) storeAttachment(ctx context.Context, upload *dto.AttachmentUpload) (*domain.Attachment, error) {
	if upload == nil {
		return nil, nil
	}
	key, err := s.attachments.Put(ctx, upload.Name, upload.MimeType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment %q: %w", upload.Name, err)
	}
	return &domain.Attachment{Name: upload.Name, MimeType: upload.MimeType, StorageKey: key}, nil
}

// CreateExpense validates a submission, applies the auto-approval policy and
// persists the new aggregate. The returned expense is self-consistent (status
// matches the last history entry) before anything else can observe it.
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, requestor domain.Actor) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}

	category, subcategory, err := s.resolveReferences(ctx, req)
	if err != nil {
		return nil, err
	}

	// Attachment policy gates the whole submission: nothing is created when it fails.
	if err := s.policy.ValidateAttachmentRequirement(req, category, subcategory); err != nil {
		return nil, err
	}

	attachment, err := s.storeAttachment(ctx, req.Attachment)
	if err != nil {
		return nil, err
	}
	subAttachment, err := s.storeAttachment(ctx, req.SubcategoryAttachment)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expense := domain.Expense{
		ExpenseID:             uuid.NewString(),
		ReferenceNumber:       utils.NewReferenceNumber(now),
		RequestorID:           requestor.UserID,
		RequestorName:         requestor.Name,
		CategoryID:            category.CategoryID,
		SubcategoryID:         req.SubcategoryID,
		ProjectID:             req.ProjectID,
		SiteID:                req.SiteID,
		Amount:                req.Amount,
		Description:           req.Description,
		SubmittedAt:           now,
		Status:                domain.StatusPendingVerification,
		Attachment:            attachment,
		SubcategoryAttachment: subAttachment,
		Version:               1,
	}
	expense.AppendHistory(requestor, domain.ActionSubmitted, now, "")

	// Auto-approval happens at creation time only; later transitions always go
	// through the verifier/approver pipeline.
	if s.policy.EvaluateAutoApproval(expense.Amount, category) {
		expense.Status = domain.StatusApproved
		expense.AppendHistory(domain.SystemActor, domain.ActionAutoApproved, now, s.policy.AutoApprovalComment(category))
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		logger.Error("Failed to save expense", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	if expense.Status == domain.StatusApproved {
		// Best-effort for the automated path: the workflow outcome stands even
		// if the audit append fails.
		if err := s.auditSvc.Record(ctx, domain.SystemActor, "Auto-Approved Expense",
			fmt.Sprintf("Expense %s auto-approved for %s", expense.ReferenceNumber, expense.RequestorName)); err != nil {
			logger.Warn("Failed to record auto-approval audit entry", slog.String("error", err.Error()))
		}
	}

	s.notifyOnSubmission(ctx, &expense, category, subcategory)

	logger.Info("Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("reference", expense.ReferenceNumber),
		slog.String("status", string(expense.Status)))
	return &expense, nil
}

// GetExpenseByID retrieves one expense. Visibility follows the role view's
// requestor scope: requestors may only see their own submissions, reviewer and
// admin roles see everything.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string, actor domain.Actor) (*domain.Expense, error) {
	view := domain.ViewForRole(actor.Role)
	if view == nil {
		return nil, apperrors.ErrForbidden
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	if owner := view.Queue(actor.UserID).RequestorID; owner != "" && expense.RequestorID != owner {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

// overrideStatuses applies the optional explicit status parameter on top of
// the queue's default status constraint.
func overrideStatuses(defaults []domain.ExpenseStatus, param string) ([]domain.ExpenseStatus, error) {
	switch param {
	case "":
		return defaults, nil
	case "All":
		return nil, nil
	default:
		status := domain.ExpenseStatus(param)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, param)
		}
		return []domain.ExpenseStatus{status}, nil
	}
}

// ListExpenses derives the actor's queue view. Results arrive most recent
// first; priority ordering is a stable partition with high-priority items in
// front.
func (s *expenseService) ListExpenses(ctx context.Context, actor domain.Actor, params dto.ListExpensesParams) ([]domain.Expense, error) {
	view := domain.ViewForRole(actor.Role)
	if view == nil {
		return nil, apperrors.ErrForbidden
	}
	queue := view.Queue(actor.UserID)

	statuses, err := overrideStatuses(queue.Statuses, params.Status)
	if err != nil {
		return nil, err
	}

	filter := portsrepo.ExpenseFilter{
		Statuses:    statuses,
		RequestorID: queue.RequestorID,
		FromDay:     params.FromDay,
		ToDay:       params.ToDay,
	}

	expenses, err := s.expenseRepo.FindExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if params.SortBy != dto.SortByDate {
		// Stable partition: all high-priority items first, both partitions
		// keeping their submittedAt-descending order.
		sort.SliceStable(expenses, func(i, j int) bool {
			return expenses[i].IsHighPriority && !expenses[j].IsHighPriority
		})
	}
	return expenses, nil
}

// GetAttachment loads the stored blob behind one of an expense's attachment
// slots. Visibility rules match GetExpenseByID.
func (s *expenseService) GetAttachment(ctx context.Context, expenseID string, slot string, actor domain.Actor) (*dto.AttachmentDownload, error) {
	expense, err := s.GetExpenseByID(ctx, expenseID, actor)
	if err != nil {
		return nil, err
	}

	var meta *domain.Attachment
	switch slot {
	case dto.AttachmentSlotExpense:
		meta = expense.Attachment
	case dto.AttachmentSlotSubcategory:
		meta = expense.SubcategoryAttachment
	default:
		return nil, fmt.Errorf("%w: unknown attachment slot %q", apperrors.ErrValidation, slot)
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: expense %s has no %s", apperrors.ErrNotFound, expense.ReferenceNumber, slot)
	}

	data, err := s.attachments.Get(ctx, meta.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment %s: %w", meta.StorageKey, err)
	}
	return &dto.AttachmentDownload{Name: meta.Name, MimeType: meta.MimeType, Data: data}, nil
}

// ListAttachments flattens every stored attachment across the collection for
// the admin attachments dashboard.
func (s *expenseService) ListAttachments(ctx context.Context, actor domain.Actor) ([]dto.AttachmentListItem, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.FindExpenses(ctx, portsrepo.ExpenseFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	items := []dto.AttachmentListItem{}
	for i := range expenses {
		e := &expenses[i]
		if e.Attachment != nil {
			items = append(items, attachmentListItem(e, dto.AttachmentSlotExpense, e.Attachment))
		}
		if e.SubcategoryAttachment != nil {
			items = append(items, attachmentListItem(e, dto.AttachmentSlotSubcategory, e.SubcategoryAttachment))
		}
	}
	return items, nil
}

func attachmentListItem(e *domain.Expense, slot string, a *domain.Attachment) dto.AttachmentListItem {
	return dto.AttachmentListItem{
		ExpenseID:       e.ExpenseID,
		ReferenceNumber: e.ReferenceNumber,
		RequestorName:   e.RequestorName,
		Slot:            slot,
		Name:            a.Name,
		MimeType:        a.MimeType,
		StorageKey:      a.StorageKey,
		SubmittedAt:     e.SubmittedAt,
	}
}

// validateTargetStatus gates the target of a transition. Expenses only ever
// enter Pending Verification at submission time, so no role may name it as a
// target.
func validateTargetStatus(newStatus domain.ExpenseStatus) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, newStatus)
	}
	if newStatus == domain.StatusPendingVerification {
		return fmt.Errorf("%w: %q is not a valid transition target", apperrors.ErrValidation, newStatus)
	}
	return nil
}

// UpdateStatus applies a single transition of the approval state machine.
//
// A missing expense is a silent no-op: the expense may have been removed
// concurrently and queue actions should not fail because of it. A transition
// the actor's role does not permit is rejected with ErrInvalidTransition, and
// a stale version surfaces ErrConflict for the caller to re-read and retry.
func (s *expenseService) UpdateStatus(ctx context.Context, expenseID string, newStatus domain.ExpenseStatus, actor domain.Actor, comment string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateTargetStatus(newStatus); err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Debug("Expense missing for status update, skipping", slog.String("expense_id", expenseID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	view := domain.ViewForRole(actor.Role)
	if !domain.CanTransition(view, expense.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s may not move %q from %q to %q",
			apperrors.ErrInvalidTransition, actor.Role, expense.ReferenceNumber, expense.Status, newStatus)
	}

	now := time.Now().UTC()
	entry := domain.HistoryItem{
		ActorID:   actor.UserID,
		ActorName: actor.Name,
		Action:    domain.ActionForStatus(newStatus),
		Timestamp: now,
		Comment:   comment,
	}

	err = s.expenseRepo.UpdateExpenseStatus(ctx, expense.ExpenseID, expense.Version, newStatus, entry)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Deleted between read and write; same silent no-op as above.
			return nil, nil
		}
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Concurrent modification on status update",
				slog.String("expense_id", expense.ExpenseID), slog.Int64("version", expense.Version))
			return nil, err
		}
		return nil, fmt.Errorf("failed to update expense status: %w", err)
	}

	expense.Status = newStatus
	expense.History = append(expense.History, entry)
	expense.Version++

	s.notifyOnStatusChange(ctx, expense, comment)

	logger.Info("Expense status updated",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("status", string(newStatus)),
		slog.String("actor_id", actor.UserID))
	return expense, nil
}

// BulkUpdateStatus applies UpdateStatus semantics independently to each id.
// Missing and ineligible items are skipped, not errors; one audit entry
// summarizes the whole batch.
func (s *expenseService) BulkUpdateStatus(ctx context.Context, expenseIDs []string, newStatus domain.ExpenseStatus, actor domain.Actor, comment string) (*dto.BulkUpdateResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := validateTargetStatus(newStatus); err != nil {
		return nil, err
	}

	result := &dto.BulkUpdateResult{}
	for _, id := range expenseIDs {
		updated, err := s.UpdateStatus(ctx, id, newStatus, actor, comment)
		if err != nil {
			// Per-item independence: a conflicting or ineligible item must
			// not sink the rest of the batch.
			logger.Warn("Skipping expense in bulk status update",
				slog.String("expense_id", id), slog.String("error", err.Error()))
			result.SkippedCount++
			continue
		}
		if updated == nil {
			result.SkippedCount++
			continue
		}
		result.UpdatedCount++
		result.UpdatedIDs = append(result.UpdatedIDs, updated.ExpenseID)
	}

	actionLabel := domain.ActionForStatus(newStatus)
	details := fmt.Sprintf("%s %d expense(s)", actionLabel, result.UpdatedCount)
	if err := s.auditSvc.Record(ctx, actor, "Bulk Status Update", details); err != nil {
		// The batch already applied, but an administrative action must not
		// report success without its audit trail.
		return result, fmt.Errorf("bulk update applied but audit record failed: %w", err)
	}

	logger.Info("Bulk status update completed",
		slog.String("status", string(newStatus)),
		slog.Int("updated", result.UpdatedCount),
		slog.Int("skipped", result.SkippedCount))
	return result, nil
}

// TogglePriority flips the high-priority flag. The flag is independent of the
// workflow state and may be toggled even on terminal expenses. The flip is
// recorded in the audit log, not in the expense history.
func (s *expenseService) TogglePriority(ctx context.Context, expenseID string, actor domain.Actor) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}

	newValue := !expense.IsHighPriority
	if err := s.expenseRepo.UpdateExpensePriority(ctx, expense.ExpenseID, expense.Version, newValue); err != nil {
		return nil, fmt.Errorf("failed to update expense priority: %w", err)
	}
	expense.IsHighPriority = newValue
	expense.Version++

	action := "Removed High Priority"
	if newValue {
		action = "Marked as High Priority"
	}
	if err := s.auditSvc.Record(ctx, actor, action, fmt.Sprintf("Expense %s", expense.ReferenceNumber)); err != nil {
		return nil, fmt.Errorf("priority updated but audit record failed: %w", err)
	}

	logger.Info("Expense priority toggled",
		slog.String("expense_id", expense.ExpenseID),
		slog.Bool("high_priority", newValue))
	return expense, nil
}

// --- notifications ---
// Delivery is best-effort: failures are logged and never affect the workflow.

func (s *expenseService) categoryNames(ctx context.Context, expense *domain.Expense) (string, string) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, expense.CategoryID)
	if err != nil {
		return "", ""
	}
	subName := ""
	if expense.SubcategoryID != "" {
		if sub := category.FindSubcategory(expense.SubcategoryID); sub != nil {
			subName = sub.Name
		}
	}
	return category.Name, subName
}

func (s *expenseService) notifyOnSubmission(ctx context.Context, expense *domain.Expense, category *domain.Category, subcategory *domain.Subcategory) {
	logger := middleware.GetLoggerFromCtx(ctx)

	subName := ""
	if subcategory != nil {
		subName = subcategory.Name
	}

	if requestor, err := s.userSvc.GetUserByID(ctx, expense.RequestorID); err == nil {
		n := portssvc.Notification{
			Kind:            portssvc.NotifySubmissionReceipt,
			Expense:         *expense,
			CategoryName:    category.Name,
			SubcategoryName: subName,
		}
		if err := s.notifier.Notify(ctx, []domain.User{*requestor}, n); err != nil {
			logger.Warn("Failed to notify requestor on submission", slog.String("error", err.Error()))
		}
	}

	if expense.Status != domain.StatusPendingVerification {
		return
	}
	verifiers, err := s.userSvc.ListUsersByRole(ctx, domain.RoleVerifier)
	if err != nil {
		logger.Warn("Failed to list verifiers for notification", slog.String("error", err.Error()))
		return
	}
	n := portssvc.Notification{
		Kind:            portssvc.NotifySubmissionAlert,
		Expense:         *expense,
		CategoryName:    category.Name,
		SubcategoryName: subName,
	}
	if err := s.notifier.Notify(ctx, verifiers, n); err != nil {
		logger.Warn("Failed to notify verifiers on submission", slog.String("error", err.Error()))
	}
}

func (s *expenseService) notifyOnStatusChange(ctx context.Context, expense *domain.Expense, comment string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	categoryName, subName := s.categoryNames(ctx, expense)

	if requestor, err := s.userSvc.GetUserByID(ctx, expense.RequestorID); err == nil {
		n := portssvc.Notification{
			Kind:            portssvc.NotifyStatusChange,
			Expense:         *expense,
			CategoryName:    categoryName,
			SubcategoryName: subName,
			Comment:         comment,
		}
		if err := s.notifier.Notify(ctx, []domain.User{*requestor}, n); err != nil {
			logger.Warn("Failed to notify requestor on status change", slog.String("error", err.Error()))
		}
	} else {
		logger.Warn("Failed to resolve requestor for notification", slog.String("requestor_id", expense.RequestorID))
	}

	if expense.Status != domain.StatusPendingApproval {
		return
	}
	approvers, err := s.userSvc.ListUsersByRole(ctx, domain.RoleApprover)
	if err != nil {
		logger.Warn("Failed to list approvers for notification", slog.String("error", err.Error()))
		return
	}
	n := portssvc.Notification{
		Kind:            portssvc.NotifyVerificationAlert,
		Expense:         *expense,
		CategoryName:    categoryName,
		SubcategoryName: subName,
	}
	if err := s.notifier.Notify(ctx, approvers, n); err != nil {
		logger.Warn("Failed to notify approvers on verification", slog.String("error", err.Error()))
	}
}
