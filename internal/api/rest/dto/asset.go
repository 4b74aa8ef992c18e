package dto

import (
	"time"

	"github.com/feral-file/ff-launchpad/internal/coordinator"
	"github.com/feral-file/ff-launchpad/internal/domain"
)

// CreateAssetRequest represents the request body for deploying an owner's token
type CreateAssetRequest struct {
	Name        string `json:"name" binding:"required"`
	Symbol      string `json:"symbol" binding:"required"`
	TotalSupply uint64 `json:"total_supply" binding:"required"`
	// LogoRef is returned by the logo upload endpoint
	LogoRef string `json:"logo_ref"`
}

// Identity returns the requested token identity
func (r *CreateAssetRequest) Identity() domain.Identity {
	return domain.Identity{
		Name:        r.Name,
		Symbol:      r.Symbol,
		TotalSupply: r.TotalSupply,
	}
}

// AssetResponse is an asset as exposed by the API
type AssetResponse struct {
	OwnerID       string                `json:"owner_id"`
	Name          string                `json:"name"`
	Symbol        string                `json:"symbol"`
	TotalSupply   uint64                `json:"total_supply"`
	ChainAddress  string                `json:"chain_address"`
	ReferenceCode string                `json:"reference_code"`
	State         domain.LifecycleState `json:"lifecycle_state"`
	LogoRef       string                `json:"logo_ref,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// NewAssetResponse converts a domain asset
func NewAssetResponse(asset domain.Asset) AssetResponse {
	return AssetResponse{
		OwnerID:       asset.OwnerID,
		Name:          asset.Identity.Name,
		Symbol:        asset.Identity.Symbol,
		TotalSupply:   asset.Identity.TotalSupply,
		ChainAddress:  asset.ChainAddress,
		ReferenceCode: asset.ReferenceCode,
		State:         asset.State,
		LogoRef:       asset.LogoRef,
		CreatedAt:     asset.CreatedAt,
		UpdatedAt:     asset.UpdatedAt,
	}
}

// CreateAssetResponse represents the response of a confirmed deployment
type CreateAssetResponse struct {
	Asset AssetResponse `json:"asset"`
	TxRef string        `json:"tx_ref"`
}

// PaymentInstructionsResponse tells the owner what to pay and where
type PaymentInstructionsResponse struct {
	ActionKind    domain.ActionKind `json:"action_kind"`
	Amount        string            `json:"amount"`
	AmountWei     string            `json:"amount_wei"`
	Wallet        string            `json:"wallet"`
	Reference     string            `json:"reference"`
	WindowSeconds int64             `json:"window_seconds"`
}

// NewPaymentInstructionsResponse converts coordinator payment instructions
func NewPaymentInstructionsResponse(p coordinator.PaymentInstructions) PaymentInstructionsResponse {
	return PaymentInstructionsResponse{
		ActionKind:    p.Kind,
		Amount:        p.Amount,
		AmountWei:     p.AmountWei,
		Wallet:        p.Wallet,
		Reference:     p.Reference,
		WindowSeconds: int64(p.Window / time.Second),
	}
}

// ConfirmResponse represents the response of a confirm call
type ConfirmResponse struct {
	Status       coordinator.ConfirmStatus `json:"status"`
	Asset        AssetResponse             `json:"asset"`
	TxRef        string                    `json:"tx_ref,omitempty"`
	PaymentTxRef string                    `json:"payment_tx_ref,omitempty"`
}

// NewConfirmResponse converts a coordinator confirm result
func NewConfirmResponse(r coordinator.ConfirmResult) ConfirmResponse {
	return ConfirmResponse{
		Status:       r.Status,
		Asset:        NewAssetResponse(r.Asset),
		TxRef:        r.TxRef,
		PaymentTxRef: r.PaymentTxRef,
	}
}

// ActionResponse is a ledger entry as exposed by the API
type ActionResponse struct {
	ID           uint64               `json:"id"`
	ActionKind   domain.ActionKind    `json:"action_kind"`
	Outcome      domain.ActionOutcome `json:"outcome"`
	AssetAddress string               `json:"asset_address,omitempty"`
	ChainTxRef   *string              `json:"chain_tx_ref,omitempty"`
	PaymentTxRef *string              `json:"payment_tx_ref,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ListActionsResponse represents the action history of an owner
type ListActionsResponse struct {
	Actions []ActionResponse `json:"actions"`
}

// NewListActionsResponse converts ledger records
func NewListActionsResponse(records []domain.ActionRecord) ListActionsResponse {
	actions := make([]ActionResponse, 0, len(records))
	for _, r := range records {
		actions = append(actions, ActionResponse{
			ID:           r.ID,
			ActionKind:   r.Kind,
			Outcome:      r.Outcome,
			AssetAddress: r.AssetAddress,
			ChainTxRef:   r.ChainTxRef,
			PaymentTxRef: r.PaymentTxRef,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return ListActionsResponse{Actions: actions}
}

// UploadLogoResponse carries the reference of a stored logo
type UploadLogoResponse struct {
	LogoRef string `json:"logo_ref"`
}
