package services

import (
	"fmt"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/shopspring/decimal"
)

// PolicyEngine evaluates category submission policy. It is pure: it never
// touches storage and leaves applying its verdicts to the caller.
type PolicyEngine struct {
	// EnforceSubcategoryAttachment turns the advisory subcategory attachment
	// requirement into a hard submission block. Off by default; the flag
	// exists so the behavior is a policy decision rather than a hard-coded one.
	EnforceSubcategoryAttachment bool
}

// EvaluateAutoApproval reports whether a freshly submitted amount qualifies
// for automatic approval under the category's threshold. The comparison is
// inclusive. A zero threshold only ever matches a zero amount, which is the
// configured way of saying "never auto-approve".
func (p PolicyEngine) EvaluateAutoApproval(amount decimal.Decimal, category *domain.Category) bool {
	if category == nil {
		return false
	}
	return amount.LessThanOrEqual(category.AutoApproveAmount)
}

// AutoApprovalComment is the history comment recorded alongside an automatic
// approval, naming the threshold that was matched.
func (p PolicyEngine) AutoApprovalComment(category *domain.Category) string {
	return fmt.Sprintf("Amount is within auto-approval limit of ₹%s.", category.AutoApproveAmount.String())
}

// ValidateAttachmentRequirement blocks a submission that is missing a
// category-mandated attachment. The subcategory requirement participates only
// when enforcement is switched on.
func (p PolicyEngine) ValidateAttachmentRequirement(req dto.CreateExpenseRequest, category *domain.Category, subcategory *domain.Subcategory) error {
	if category.AttachmentRequired && req.Attachment == nil {
		return fmt.Errorf("%w: category %q requires an attachment", apperrors.ErrPolicyViolation, category.Name)
	}
	if p.EnforceSubcategoryAttachment && subcategory != nil && subcategory.AttachmentRequired && req.SubcategoryAttachment == nil {
		return fmt.Errorf("%w: subcategory %q requires an attachment", apperrors.ErrPolicyViolation, subcategory.Name)
	}
	return nil
}
