package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainBSCMainnet      Chain = "eip155:56"
	ChainBSCTestnet      Chain = "eip155:97"
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainBSCMainnet ||
		chain == ChainBSCTestnet ||
		chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia
}

// ChainID returns the numeric EIP-155 chain id
func (c Chain) ChainID() (*big.Int, error) {
	parts := strings.SplitN(string(c), ":", 2)
	if len(parts) != 2 || parts[0] != "eip155" {
		return nil, fmt.Errorf("unsupported chain: %s", c)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chain id %q: %w", parts[1], err)
	}
	return big.NewInt(id), nil
}

// LifecycleState is the lifecycle state of an asset
type LifecycleState string

const (
	// StateCreated is the state of an asset whose deployment has been confirmed
	StateCreated LifecycleState = "created"
	// StateTradingLocked is the state of a deployed asset whose trading is still disabled
	StateTradingLocked LifecycleState = "trading_locked"
	// StateTradingEnabled is the state of an asset whose trading has been enabled on-chain
	StateTradingEnabled LifecycleState = "trading_enabled"
	// StateListingSubmitted is the terminal state, the listing request has been accepted
	StateListingSubmitted LifecycleState = "listing_submitted"
)

var lifecycleRank = map[LifecycleState]int{
	StateCreated:          1,
	StateTradingLocked:    2,
	StateTradingEnabled:   3,
	StateListingSubmitted: 4,
}

// Valid reports whether the state is a known lifecycle state
func (s LifecycleState) Valid() bool {
	_, ok := lifecycleRank[s]
	return ok
}

// Rank returns the position of the state in the lifecycle, 0 for unknown states
func (s LifecycleState) Rank() int {
	return lifecycleRank[s]
}

// AtLeast reports whether s has reached the other state
func (s LifecycleState) AtLeast(other LifecycleState) bool {
	return s.Rank() >= other.Rank() && s.Valid()
}

// CanTransition reports whether an asset may move from one state to the next.
// Only single forward steps are allowed.
func CanTransition(from, to LifecycleState) bool {
	switch from {
	case StateCreated:
		return to == StateTradingLocked
	case StateTradingLocked:
		return to == StateTradingEnabled
	case StateTradingEnabled:
		return to == StateListingSubmitted
	}
	return false
}

// ActionKind is the kind of privileged action performed for an asset
type ActionKind string

const (
	ActionKindDeploy        ActionKind = "deploy"
	ActionKindEnableTrading ActionKind = "enable_trading"
	ActionKindSubmitListing ActionKind = "submit_listing"
)

// Valid reports whether the action kind is known
func (k ActionKind) Valid() bool {
	return k == ActionKindDeploy || k == ActionKindEnableTrading || k == ActionKindSubmitListing
}

// TargetState returns the lifecycle state an asset reaches once the action is confirmed
func (k ActionKind) TargetState() LifecycleState {
	switch k {
	case ActionKindDeploy:
		return StateTradingLocked
	case ActionKindEnableTrading:
		return StateTradingEnabled
	case ActionKindSubmitListing:
		return StateListingSubmitted
	}
	return ""
}

// RequiredState returns the lifecycle state an asset must be in before the action may run.
// Deploy has no precondition state since the asset does not exist yet.
func (k ActionKind) RequiredState() LifecycleState {
	switch k {
	case ActionKindEnableTrading:
		return StateTradingLocked
	case ActionKindSubmitListing:
		return StateTradingEnabled
	}
	return ""
}

// ActionOutcome is the outcome of a privileged action attempt
type ActionOutcome string

const (
	ActionOutcomePending   ActionOutcome = "pending"
	ActionOutcomeConfirmed ActionOutcome = "confirmed"
	ActionOutcomeFailed    ActionOutcome = "failed"
)

// Active reports whether the outcome blocks a new attempt of the same action
func (o ActionOutcome) Active() bool {
	return o == ActionOutcomePending || o == ActionOutcomeConfirmed
}

// Identity is the immutable identity of an asset
type Identity struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply uint64 `json:"total_supply"`
}

const (
	MinNameLength   = 3
	MaxNameLength   = 30
	MinSymbolLength = 2
	MaxSymbolLength = 6
	MaxTotalSupply  = uint64(1_000_000_000_000_000)
)

// Normalize trims the name and upper-cases the symbol
func (i Identity) Normalize() Identity {
	return Identity{
		Name:        strings.TrimSpace(i.Name),
		Symbol:      strings.ToUpper(strings.TrimSpace(i.Symbol)),
		TotalSupply: i.TotalSupply,
	}
}

// Validate checks the identity against the creation rules
func (i Identity) Validate() error {
	nameLen := len([]rune(i.Name))
	if nameLen < MinNameLength || nameLen > MaxNameLength {
		return fmt.Errorf("name must be between %d and %d characters", MinNameLength, MaxNameLength)
	}

	if len(i.Symbol) < MinSymbolLength || len(i.Symbol) > MaxSymbolLength {
		return fmt.Errorf("symbol must be between %d and %d characters", MinSymbolLength, MaxSymbolLength)
	}
	for _, r := range i.Symbol {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return fmt.Errorf("symbol must be alphanumeric")
		}
	}

	if i.TotalSupply == 0 || i.TotalSupply > MaxTotalSupply {
		return fmt.Errorf("total supply must be between 1 and %d", MaxTotalSupply)
	}

	return nil
}

// Asset is a user-created token tracked through its lifecycle
type Asset struct {
	OwnerID       string         `json:"owner_id"`
	Identity      Identity       `json:"identity"`
	ChainAddress  string         `json:"chain_address"`
	ReferenceCode string         `json:"reference_code"`
	State         LifecycleState `json:"lifecycle_state"`
	LogoRef       string         `json:"logo_ref,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ActionRecord is a row of the append-only action ledger
type ActionRecord struct {
	ID           uint64         `json:"id"`
	OwnerID      string         `json:"owner_id"`
	AssetAddress string         `json:"asset_address"`
	Kind         ActionKind     `json:"action_kind"`
	ChainTxRef   *string        `json:"chain_tx_ref,omitempty"`
	PaymentTxRef *string        `json:"payment_tx_ref,omitempty"`
	Outcome      ActionOutcome  `json:"outcome"`
	Details      *DeployDetails `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DeployDetails is carried by a deploy record so that an indeterminate deployment can be
// turned into an asset once the chain confirms it
type DeployDetails struct {
	Identity      Identity `json:"identity"`
	ReferenceCode string   `json:"reference_code"`
	LogoRef       string   `json:"logo_ref,omitempty"`
}

// PaymentIntent describes a payment expected by the system. It lives for one verification call.
type PaymentIntent struct {
	ExpectedAmount *big.Int
	ReferenceCode  string
	TargetWallet   string
	OpenedAt       time.Time
}

// Transfer is a value transfer reported by the block explorer
type Transfer struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     *big.Int  `json:"value"`
	TxRef     string    `json:"tx_ref"`
	Input     string    `json:"input,omitempty"`
	Succeeded bool      `json:"succeeded"`
}

// WalletSet holds the wallets wired into a freshly deployed token contract
type WalletSet struct {
	Dev       string `json:"dev"`
	Marketing string `json:"marketing"`
	Liquidity string `json:"liquidity"`
}

// Validate checks that every wallet is a hex address
func (w WalletSet) Validate() error {
	for name, addr := range map[string]string{"dev": w.Dev, "marketing": w.Marketing, "liquidity": w.Liquidity} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s wallet address: %q", name, addr)
		}
	}
	return nil
}

// NormalizeAddress returns the checksummed form of a hex address
func NormalizeAddress(addr string) string {
	if !common.IsHexAddress(addr) {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}

// IsValidAddress reports whether addr is a hex encoded account address
func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr) && addr != ZERO_ADDRESS
}

// EqualAddress compares two addresses case-insensitively
func EqualAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
