package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidChain(t *testing.T) {
	tests := []struct {
		name     string
		chain    Chain
		expected bool
	}{
		{name: "bsc mainnet", chain: ChainBSCMainnet, expected: true},
		{name: "bsc testnet", chain: ChainBSCTestnet, expected: true},
		{name: "ethereum mainnet", chain: ChainEthereumMainnet, expected: true},
		{name: "empty chain", chain: Chain(""), expected: false},
		{name: "tezos", chain: Chain("tezos:mainnet"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidChain(tt.chain))
		})
	}
}

func TestChain_ChainID(t *testing.T) {
	id, err := ChainBSCMainnet.ChainID()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(56), id)

	_, err = Chain("tezos:mainnet").ChainID()
	assert.Error(t, err)

	_, err = Chain("eip155:abc").ChainID()
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	states := []LifecycleState{StateCreated, StateTradingLocked, StateTradingEnabled, StateListingSubmitted}
	allowed := map[[2]LifecycleState]bool{
		{StateCreated, StateTradingLocked}:          true,
		{StateTradingLocked, StateTradingEnabled}:   true,
		{StateTradingEnabled, StateListingSubmitted}: true,
	}

	for _, from := range states {
		for _, to := range states {
			name := fmt.Sprintf("%s->%s", from, to)
			t.Run(name, func(t *testing.T) {
				assert.Equal(t, allowed[[2]LifecycleState{from, to}], CanTransition(from, to))
			})
		}
	}

	// never backwards
	assert.False(t, CanTransition(StateTradingEnabled, StateTradingLocked))
	assert.False(t, CanTransition(StateListingSubmitted, StateTradingEnabled))
	assert.False(t, CanTransition(LifecycleState("bogus"), StateTradingLocked))
}

func TestLifecycleState_AtLeast(t *testing.T) {
	assert.True(t, StateTradingEnabled.AtLeast(StateTradingLocked))
	assert.True(t, StateTradingEnabled.AtLeast(StateTradingEnabled))
	assert.True(t, StateListingSubmitted.AtLeast(StateTradingEnabled))
	assert.False(t, StateTradingLocked.AtLeast(StateTradingEnabled))
	assert.False(t, LifecycleState("").AtLeast(LifecycleState("")))
}

func TestActionKind_States(t *testing.T) {
	assert.Equal(t, StateTradingLocked, ActionKindDeploy.TargetState())
	assert.Equal(t, StateTradingEnabled, ActionKindEnableTrading.TargetState())
	assert.Equal(t, StateListingSubmitted, ActionKindSubmitListing.TargetState())

	assert.Equal(t, LifecycleState(""), ActionKindDeploy.RequiredState())
	assert.Equal(t, StateTradingLocked, ActionKindEnableTrading.RequiredState())
	assert.Equal(t, StateTradingEnabled, ActionKindSubmitListing.RequiredState())

	for _, k := range []ActionKind{ActionKindEnableTrading, ActionKindSubmitListing} {
		assert.True(t, CanTransition(k.RequiredState(), k.TargetState()), k)
	}
}

func TestActionOutcome_Active(t *testing.T) {
	assert.True(t, ActionOutcomePending.Active())
	assert.True(t, ActionOutcomeConfirmed.Active())
	assert.False(t, ActionOutcomeFailed.Active())
}

func TestIdentity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   Identity
		wantErr string
	}{
		{name: "valid", input: Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: 1_000_000}},
		{name: "name too short", input: Identity{Name: "Do", Symbol: "DOGX", TotalSupply: 1}, wantErr: "name"},
		{name: "name too long", input: Identity{Name: strings.Repeat("a", 31), Symbol: "DOGX", TotalSupply: 1}, wantErr: "name"},
		{name: "symbol too short", input: Identity{Name: "DogeX", Symbol: "D", TotalSupply: 1}, wantErr: "symbol"},
		{name: "symbol too long", input: Identity{Name: "DogeX", Symbol: "DOGEXXX", TotalSupply: 1}, wantErr: "symbol"},
		{name: "symbol not alphanumeric", input: Identity{Name: "DogeX", Symbol: "DO-G", TotalSupply: 1}, wantErr: "alphanumeric"},
		{name: "zero supply", input: Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: 0}, wantErr: "supply"},
		{name: "supply too large", input: Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: MaxTotalSupply + 1}, wantErr: "supply"},
		{name: "max supply", input: Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: MaxTotalSupply}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIdentity_Normalize(t *testing.T) {
	got := Identity{Name: "  Doge X ", Symbol: " dogx", TotalSupply: 5}.Normalize()
	assert.Equal(t, Identity{Name: "Doge X", Symbol: "DOGX", TotalSupply: 5}, got)
}

func TestWalletSet_Validate(t *testing.T) {
	valid := WalletSet{
		Dev:       "0x1111111111111111111111111111111111111111",
		Marketing: "0x2222222222222222222222222222222222222222",
		Liquidity: "0x3333333333333333333333333333333333333333",
	}
	assert.NoError(t, valid.Validate())

	invalid := valid
	invalid.Marketing = "not-an-address"
	assert.ErrorContains(t, invalid.Validate(), "marketing")
}

func TestEqualAddress(t *testing.T) {
	assert.True(t, EqualAddress("0xAbCdEf0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000001"))
	assert.False(t, EqualAddress("0x01", "0x02"))
}

func TestNewReferenceCode(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewReferenceCode(now)
		require.NoError(t, err)
		assert.Len(t, code, 26)
		assert.False(t, seen[code], "duplicate reference code")
		seen[code] = true
	}
}

func TestPaymentReference(t *testing.T) {
	assert.Equal(t, "UNLOCK-01ABC", PaymentReference(ActionKindEnableTrading, "01abc"))
	assert.Equal(t, "LISTING-01ABC", PaymentReference(ActionKindSubmitListing, "01ABC"))
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Wrap(ErrNotFound, errors.New("owner u1")))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrAlreadyExists))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Contains(t, wrapped.Error(), "owner u1")

	assert.True(t, errors.Is(Wrap(ErrAlreadyUnlocked, nil), ErrAlreadyUnlocked))
	assert.False(t, errors.Is(ErrAlreadyUnlocked, ErrAlreadyListed))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(ErrActuationIndeterminate), "wait")
	assert.Contains(t, UserMessage(ErrPaymentNotVerified), "payment")
	assert.Contains(t, UserMessage(ErrConsistencyFault), "support")
	assert.Contains(t, UserMessage(ErrAlreadyUnlocked), "already enabled")
	assert.Contains(t, UserMessage(ErrAlreadyListed), "already been submitted")
	assert.Contains(t, UserMessage(Wrapf(ErrInvalidInput, "bad symbol")), "bad symbol")
	assert.Contains(t, UserMessage(errors.New("boom")), "Unexpected")
}
