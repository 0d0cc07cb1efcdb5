package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GodwinAdu/retail-pos-sub000/internal/models"
)

func TestIdentityCanAccess(t *testing.T) {
	id := Identity{UserID: "u1", Role: models.RoleCashier, BranchAccess: []string{"b1", "b2"}}
	require.True(t, id.CanAccess("b1"))
	require.True(t, id.CanAccess("b2"))
	require.False(t, id.CanAccess("b3"))
	require.False(t, Identity{}.CanAccess("b1"))
}

func TestSubscriptionActive(t *testing.T) {
	gate := StaticGate{Blocked: map[string]bool{"s-blocked": true}}
	check := SubscriptionActive(gate)

	require.NoError(t, check(context.Background(), Identity{}, "s-ok", "b1"))
	require.ErrorIs(t, check(context.Background(), Identity{}, "s-blocked", "b1"), ErrSubscriptionBlocked)
}

type failingGate struct{ err error }

func (g failingGate) IsBlocked(context.Context, string) (bool, error) { return false, g.err }

func TestSubscriptionActivePropagatesGateError(t *testing.T) {
	gateErr := errors.New("billing service unreachable")
	check := SubscriptionActive(failingGate{err: gateErr})
	require.ErrorIs(t, check(context.Background(), Identity{}, "s1", "b1"), gateErr)
}

func TestBranchAuthorized(t *testing.T) {
	check := BranchAuthorized()
	id := Identity{BranchAccess: []string{"b1"}}

	require.NoError(t, check(context.Background(), id, "s1", "b1"))
	require.ErrorIs(t, check(context.Background(), id, "s1", "b2"), ErrBranchAccessDenied)
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	calls := []string{}
	record := func(name string, err error) Precondition {
		return func(context.Context, Identity, string, string) error {
			calls = append(calls, name)
			return err
		}
	}

	boom := errors.New("boom")
	chain := Chain(record("first", nil), record("second", boom), record("third", nil))
	require.ErrorIs(t, chain(context.Background(), Identity{}, "s1", "b1"), boom)
	require.Equal(t, []string{"first", "second"}, calls)
}

func TestAllowAll(t *testing.T) {
	blocked, err := AllowAll{}.IsBlocked(context.Background(), "any")
	require.NoError(t, err)
	require.False(t, blocked)
}
