// Package policy holds the cross-cutting preconditions applied at the
// engine boundary: the tenant subscription gate and branch authorization.
// They are composed explicitly instead of wrapping every data-access call
// ad hoc, so each check is testable in isolation.
package policy

import (
	"context"
	"errors"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

var (
	// ErrSubscriptionBlocked means the tenant's subscription is overdue
	// and every core operation must short-circuit.
	ErrSubscriptionBlocked = errors.New("policy: subscription blocked")

	// ErrBranchAccessDenied means the caller's identity does not grant
	// access to the requested branch.
	ErrBranchAccessDenied = errors.New("policy: branch access denied")
)

// Identity is the authenticated caller as seen by the engine. It is
// produced by the auth middleware; the engine never inspects tokens.
type Identity struct {
	UserID       string
	Role         models.Role
	BranchAccess []string
}

// CanAccess reports whether the identity may operate the given branch.
func (id Identity) CanAccess(branchID string) bool {
	for _, b := range id.BranchAccess {
		if b == branchID {
			return true
		}
	}
	return false
}

// Gate is the external tenant-billing collaborator.
type Gate interface {
	IsBlocked(ctx context.Context, storeID string) (bool, error)
}

// AllowAll is a Gate that never blocks. Used in dev mode and tests.
type AllowAll struct{}

func (AllowAll) IsBlocked(context.Context, string) (bool, error) { return false, nil }

// StaticGate blocks a fixed set of store IDs. Useful in tests and as the
// adapter shape for a real billing service.
type StaticGate struct {
	Blocked map[string]bool
}

func (g StaticGate) IsBlocked(_ context.Context, storeID string) (bool, error) {
	return g.Blocked[storeID], nil
}

// Precondition is one guard evaluated before an engine operation runs.
type Precondition func(ctx context.Context, id Identity, storeID, branchID string) error

// Chain evaluates preconditions in order, stopping at the first failure.
func Chain(checks ...Precondition) Precondition {
	return func(ctx context.Context, id Identity, storeID, branchID string) error {
		for _, check := range checks {
			if err := check(ctx, id, storeID, branchID); err != nil {
				return err
			}
		}
		return nil
	}
}

// SubscriptionActive fails with ErrSubscriptionBlocked when the gate
// reports the tenant as blocked.
func SubscriptionActive(g Gate) Precondition {
	return func(ctx context.Context, _ Identity, storeID, _ string) error {
		blocked, err := g.IsBlocked(ctx, storeID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrSubscriptionBlocked
		}
		return nil
	}
}

// BranchAuthorized fails with ErrBranchAccessDenied when the identity's
// branch-access set does not contain the target branch.
func BranchAuthorized() Precondition {
	return func(_ context.Context, id Identity, _, branchID string) error {
		if !id.CanAccess(branchID) {
			return ErrBranchAccessDenied
		}
		return nil
	}
}
