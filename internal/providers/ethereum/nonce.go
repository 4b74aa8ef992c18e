package ethereum

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/lock"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

// SubmitHook receives the hash of a signed transaction before it is broadcast.
// An error aborts the submission and leaves the nonce unused.
type SubmitHook func(ctx context.Context, txHash string) error

type submitHookKey struct{}

// WithSubmitHook returns a context whose transactions are reported to hook before they are sent
func WithSubmitHook(ctx context.Context, hook SubmitHook) context.Context {
	return context.WithValue(ctx, submitHookKey{}, hook)
}

func submitHookFrom(ctx context.Context) SubmitHook {
	hook, _ := ctx.Value(submitHookKey{}).(SubmitHook)
	return hook
}

// nonceManager assigns nonces for the single signing account.
// Sign and send happen under one lock so two submissions never share a nonce.
// With a signer lock the critical section spans every instance sharing the key.
type nonceManager struct {
	mu      sync.Mutex
	client  adapter.EthClient
	account common.Address
	signer  lock.Locker
	next    *uint64
}

func newNonceManager(client adapter.EthClient, account common.Address, signer lock.Locker) *nonceManager {
	return &nonceManager{client: client, account: account, signer: signer}
}

// submit builds, signs and broadcasts a transaction with the next nonce.
// On a send failure the cached nonce is dropped and re-read from the node next time.
func (n *nonceManager) submit(ctx context.Context, build func(nonce uint64) (*types.Transaction, error)) (*types.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.signer != nil {
		unlock, err := n.signer.Lock(ctx, n.account.Hex())
		if err != nil {
			return nil, fmt.Errorf("%w: failed to lock signer: %v", ErrNotSubmitted, err)
		}
		defer unlock()
	}

	nonce, err := n.nextNonce(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := build(nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSubmitted, err)
	}

	if hook := submitHookFrom(ctx); hook != nil {
		if err := hook(ctx, tx.Hash().Hex()); err != nil {
			return nil, fmt.Errorf("%w: failed to record transaction %s: %v", ErrNotSubmitted, tx.Hash().Hex(), err)
		}
	}

	if err := n.client.SendTransaction(ctx, tx); err != nil {
		n.next = nil
		logger.WarnCtx(ctx, "Failed to send transaction, nonce will be re-synced",
			zap.Uint64("nonce", nonce),
			zap.String("txHash", tx.Hash().Hex()),
			zap.Error(err),
		)
		return tx, err
	}

	next := nonce + 1
	n.next = &next
	return tx, nil
}

// nextNonce returns the nonce for the next transaction.
// Other instances may have sent since the last submission when a signer lock is
// shared, so the node is asked every time and the cache only guards against a
// node that has not seen our own last transaction yet.
func (n *nonceManager) nextNonce(ctx context.Context) (uint64, error) {
	if n.next != nil && n.signer == nil {
		return *n.next, nil
	}

	pending, err := n.client.PendingNonceAt(ctx, n.account)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get nonce: %v", ErrNotSubmitted, err)
	}
	if n.next != nil && *n.next > pending {
		return *n.next, nil
	}
	return pending, nil
}

// reset drops the cached nonce so the next submission re-reads it from the node.
// Used after a receipt timeout: a dropped transaction would otherwise leave a gap.
func (n *nonceManager) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next = nil
}
