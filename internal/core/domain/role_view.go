package domain

// ExpenseQueue describes the slice of the expense collection a role's work
// queue covers. Zero-valued fields leave that dimension unconstrained.
type ExpenseQueue struct {
	// Statuses is the queue's default status constraint. Empty means every
	// status.
	Statuses []ExpenseStatus
	// RequestorID restricts the queue to one requestor's own submissions.
	RequestorID string
}

// RoleView is the per-role capability over the expense collection: which
// expenses the role's queue shows, and which status transitions the role may
// perform from a given state. One implementation exists per role so callers
// dispatch on behavior rather than branching on the role string.
type RoleView interface {
	// Queue returns the slice of the expense collection this role's work
	// queue shows for the given acting user.
	Queue(userID string) ExpenseQueue

	// AllowedTransitions returns the target statuses this role may move an
	// expense into from the given state. Empty for terminal states and for
	// roles without workflow powers.
	AllowedTransitions(from ExpenseStatus) []ExpenseStatus
}

// ViewForRole returns the RoleView implementation for the given role, or nil
// for unknown roles.
func ViewForRole(r Role) RoleView {
	switch r {
	case RoleRequestor:
		return RequestorView{}
	case RoleVerifier:
		return VerifierView{}
	case RoleApprover:
		return ApproverView{}
	case RoleAdmin:
		return AdminView{}
	}
	return nil
}

// RequestorView shows a user their own submissions; requestors hold no
// transition powers.
type RequestorView struct{}

func (RequestorView) Queue(userID string) ExpenseQueue {
	return ExpenseQueue{RequestorID: userID}
}

func (RequestorView) AllowedTransitions(ExpenseStatus) []ExpenseStatus {
	return nil
}

// VerifierView queues expenses awaiting verification, which a verifier may
// pass on for approval or reject.
type VerifierView struct{}

func (VerifierView) Queue(string) ExpenseQueue {
	return ExpenseQueue{Statuses: []ExpenseStatus{StatusPendingVerification}}
}

func (VerifierView) AllowedTransitions(from ExpenseStatus) []ExpenseStatus {
	if from == StatusPendingVerification {
		return []ExpenseStatus{StatusPendingApproval, StatusRejected}
	}
	return nil
}

// ApproverView queues verified expenses, which an approver may approve or reject.
type ApproverView struct{}

func (ApproverView) Queue(string) ExpenseQueue {
	return ExpenseQueue{Statuses: []ExpenseStatus{StatusPendingApproval}}
}

func (ApproverView) AllowedTransitions(from ExpenseStatus) []ExpenseStatus {
	if from == StatusPendingApproval {
		return []ExpenseStatus{StatusApproved, StatusRejected}
	}
	return nil
}

// AdminView sees everything but holds no workflow transition powers; approvals
// always flow through the verifier/approver pipeline.
type AdminView struct{}

func (AdminView) Queue(string) ExpenseQueue { return ExpenseQueue{} }

func (AdminView) AllowedTransitions(ExpenseStatus) []ExpenseStatus { return nil }

// CanTransition reports whether the view permits moving an expense from one
// status to another.
func CanTransition(v RoleView, from, to ExpenseStatus) bool {
	if v == nil {
		return false
	}
	for _, allowed := range v.AllowedTransitions(from) {
		if allowed == to {
			return true
		}
	}
	return false
}
