package verifier

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/providers/explorer"
)

// Reason explains a verification outcome
type Reason string

const (
	ReasonMatched             Reason = "matched"
	ReasonInvalidIntent       Reason = "invalid_intent"
	ReasonExplorerUnavailable Reason = "explorer_unavailable"
	ReasonNoMatchingPayment   Reason = "no_matching_payment"
)

// Verification is the outcome of a payment verification
type Verification struct {
	Verified  bool
	Reason    Reason
	MatchedTx *domain.Transfer
}

// ConsumedChecker reports whether a payment was already spent on another action
//
//go:generate mockgen -source=verifier.go -destination=../mocks/verifier.go -package=mocks -mock_names=ConsumedChecker=MockConsumedChecker,Verifier=MockVerifier
type ConsumedChecker interface {
	IsPaymentConsumed(ctx context.Context, paymentTxRef string) (bool, error)
}

// Verifier checks the payment wallet for a transfer matching a payment intent
type Verifier interface {
	// Verify never returns an error: anything that prevents a positive match is a negative result
	Verify(ctx context.Context, intent domain.PaymentIntent, window time.Duration) Verification
}

// Config holds the verifier settings
type Config struct {
	// RequireReferenceMatch additionally requires the hex encoded payment reference in the transaction input
	RequireReferenceMatch bool
}

type verifier struct {
	explorer explorer.Client
	clock    adapter.Clock
	consumed ConsumedChecker
	config   Config
}

// New creates a payment verifier. consumed may be nil.
func New(explorerClient explorer.Client, clock adapter.Clock, consumed ConsumedChecker, cfg Config) Verifier {
	return &verifier{
		explorer: explorerClient,
		clock:    clock,
		consumed: consumed,
		config:   cfg,
	}
}

func (v *verifier) Verify(ctx context.Context, intent domain.PaymentIntent, window time.Duration) Verification {
	if intent.ExpectedAmount == nil || intent.ExpectedAmount.Sign() <= 0 || !domain.IsValidAddress(intent.TargetWallet) {
		logger.WarnCtx(ctx, "Invalid payment intent",
			zap.String("wallet", intent.TargetWallet),
			zap.String("reference", intent.ReferenceCode),
		)
		return Verification{Reason: ReasonInvalidIntent}
	}
	if window <= 0 {
		window = domain.DEFAULT_PAYMENT_WINDOW
	}

	transfers, err := v.explorer.FetchTransfers(ctx, intent.TargetWallet)
	if err != nil {
		logger.WarnCtx(ctx, "Payment verification failed closed",
			zap.String("wallet", intent.TargetWallet),
			zap.String("reference", intent.ReferenceCode),
			zap.Error(err),
		)
		return Verification{Reason: ReasonExplorerUnavailable}
	}

	cutoff := v.clock.Now().Add(-window)
	for i := range transfers {
		transfer := transfers[i]
		if !v.matches(transfer, intent, cutoff) {
			continue
		}

		if v.consumed != nil {
			consumed, err := v.consumed.IsPaymentConsumed(ctx, transfer.TxRef)
			if err != nil {
				logger.WarnCtx(ctx, "Failed to check payment usage, failing closed",
					zap.String("txRef", transfer.TxRef),
					zap.Error(err),
				)
				return Verification{Reason: ReasonExplorerUnavailable}
			}
			if consumed {
				logger.DebugCtx(ctx, "Skipping consumed payment", zap.String("txRef", transfer.TxRef))
				continue
			}
		}

		logger.InfoCtx(ctx, "Payment verified",
			zap.String("txRef", transfer.TxRef),
			zap.String("from", transfer.From),
			zap.String("value", transfer.Value.String()),
			zap.String("reference", intent.ReferenceCode),
		)
		return Verification{Verified: true, Reason: ReasonMatched, MatchedTx: &transfer}
	}

	logger.InfoCtx(ctx, "No matching payment found",
		zap.String("wallet", intent.TargetWallet),
		zap.String("expected", intent.ExpectedAmount.String()),
		zap.String("reference", intent.ReferenceCode),
		zap.Int("transfers", len(transfers)),
	)
	return Verification{Reason: ReasonNoMatchingPayment}
}

func (v *verifier) matches(transfer domain.Transfer, intent domain.PaymentIntent, cutoff time.Time) bool {
	if !transfer.Succeeded || transfer.Value == nil {
		return false
	}
	if transfer.Timestamp.Before(cutoff) {
		return false
	}
	if !domain.EqualAddress(transfer.To, intent.TargetWallet) {
		return false
	}
	if transfer.Value.Cmp(intent.ExpectedAmount) < 0 {
		return false
	}
	if v.config.RequireReferenceMatch && !containsReference(transfer.Input, intent.ReferenceCode) {
		return false
	}
	return true
}

// containsReference reports whether the transaction input carries the reference as raw bytes
func containsReference(input string, reference string) bool {
	if reference == "" {
		return false
	}
	data := strings.ToLower(strings.TrimPrefix(input, "0x"))
	return strings.Contains(data, hex.EncodeToString([]byte(reference)))
}
