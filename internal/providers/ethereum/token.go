package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/lock"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

const enableTradingMethod = "enableTrading"

// TxStatus is the chain status of a previously submitted transaction
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusReverted  TxStatus = "reverted"
	// TxStatusNotFound means the node knows nothing about the transaction
	TxStatusNotFound TxStatus = "not_found"
)

// TxResult is a mined, successful transaction
type TxResult struct {
	TxHash string
	// ContractAddress is set for deployments
	ContractAddress string
	BlockNumber     uint64
}

// TxReceiptStatus is the outcome of a status lookup
type TxReceiptStatus struct {
	Status          TxStatus
	ContractAddress string
	BlockNumber     uint64
}

// Config holds the token contract client settings
type Config struct {
	ChainID               *big.Int
	PrivateKey            string
	Artifact              *Artifact
	DeployGasLimit        uint64
	EnableTradingGasLimit uint64
	ReceiptTimeout        time.Duration
	ReceiptPollInterval   time.Duration
	// SignerLock serialises nonce assignment across instances sharing the key; nil for a single instance
	SignerLock lock.Locker
}

// TokenClient submits token contract transactions from the platform account
//
//go:generate mockgen -source=token.go -destination=../../mocks/token_client.go -package=mocks -mock_names=TokenClient=MockTokenClient
type TokenClient interface {
	// Deploy deploys a new token contract with trading locked.
	// Returns *PendingError when no receipt arrives before the receipt timeout.
	// A SubmitHook on ctx sees the transaction hash before it is broadcast.
	Deploy(ctx context.Context, identity domain.Identity, wallets domain.WalletSet) (*TxResult, error)

	// EnableTrading calls enableTrading on a deployed token contract.
	// Returns *PendingError when no receipt arrives before the receipt timeout.
	EnableTrading(ctx context.Context, contractAddress string) (*TxResult, error)

	// TransactionStatus looks up the current status of a submitted transaction
	TransactionStatus(ctx context.Context, txHash string) (*TxReceiptStatus, error)

	// Address returns the platform account address
	Address() string
}

type tokenClient struct {
	client  adapter.EthClient
	clock   adapter.Clock
	config  Config
	key     *ecdsa.PrivateKey
	account common.Address
	signer  types.Signer
	nonces  *nonceManager
}

// NewTokenClient creates a token contract client signing with the configured key
func NewTokenClient(client adapter.EthClient, clock adapter.Clock, cfg Config) (TokenClient, error) {
	if cfg.Artifact == nil {
		return nil, errors.New("contract artifact is required")
	}
	if cfg.ChainID == nil || cfg.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id is required")
	}
	if cfg.ReceiptTimeout <= 0 {
		return nil, errors.New("receipt timeout must be positive")
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = 3 * time.Second
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid deployer private key: %w", err)
	}
	account := crypto.PubkeyToAddress(key.PublicKey)

	return &tokenClient{
		client:  client,
		clock:   clock,
		config:  cfg,
		key:     key,
		account: account,
		signer:  types.NewEIP155Signer(cfg.ChainID),
		nonces:  newNonceManager(client, account, cfg.SignerLock),
	}, nil
}

// VerifyChain checks that the node serves the configured chain
func VerifyChain(ctx context.Context, client adapter.EthClient, expected *big.Int) error {
	actual, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	if actual.Cmp(expected) != 0 {
		return fmt.Errorf("rpc node serves chain %s, expected %s", actual, expected)
	}
	return nil
}

func (c *tokenClient) Address() string {
	return c.account.Hex()
}

// Deploy deploys a new token contract
func (c *tokenClient) Deploy(ctx context.Context, identity domain.Identity, wallets domain.WalletSet) (*TxResult, error) {
	args, err := c.config.Artifact.ABI.Pack("",
		identity.Name,
		identity.Symbol,
		new(big.Int).SetUint64(identity.TotalSupply),
		common.HexToAddress(wallets.Dev),
		common.HexToAddress(wallets.Marketing),
		common.HexToAddress(wallets.Liquidity),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to pack constructor: %v", ErrNotSubmitted, err)
	}
	data := append(append([]byte{}, c.config.Artifact.Bytecode...), args...)

	var contractAddress common.Address
	tx, err := c.nonces.submit(ctx, func(nonce uint64) (*types.Transaction, error) {
		contractAddress = crypto.CreateAddress(c.account, nonce)
		return c.signTx(ctx, nonce, nil, c.config.DeployGasLimit, data)
	})
	if err != nil {
		return nil, c.classifySendError(tx, contractAddress, err)
	}

	logger.InfoCtx(ctx, "Token deployment submitted",
		zap.String("txHash", tx.Hash().Hex()),
		zap.String("contractAddress", contractAddress.Hex()),
		zap.String("symbol", identity.Symbol),
	)

	receipt, err := c.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, c.classifyWaitError(tx, contractAddress, err)
	}
	if receipt.ContractAddress != (common.Address{}) {
		contractAddress = receipt.ContractAddress
	}

	return &TxResult{
		TxHash:          tx.Hash().Hex(),
		ContractAddress: contractAddress.Hex(),
		BlockNumber:     receipt.BlockNumber.Uint64(),
	}, nil
}

// EnableTrading calls enableTrading on the token contract
func (c *tokenClient) EnableTrading(ctx context.Context, contractAddress string) (*TxResult, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("%w: invalid contract address %q", ErrNotSubmitted, contractAddress)
	}
	to := common.HexToAddress(contractAddress)

	data, err := c.config.Artifact.ABI.Pack(enableTradingMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to pack %s: %v", ErrNotSubmitted, enableTradingMethod, err)
	}

	tx, err := c.nonces.submit(ctx, func(nonce uint64) (*types.Transaction, error) {
		return c.signTx(ctx, nonce, &to, c.config.EnableTradingGasLimit, data)
	})
	if err != nil {
		return nil, c.classifySendError(tx, common.Address{}, err)
	}

	logger.InfoCtx(ctx, "Enable trading submitted",
		zap.String("txHash", tx.Hash().Hex()),
		zap.String("contractAddress", to.Hex()),
	)

	receipt, err := c.waitForReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, c.classifyWaitError(tx, common.Address{}, err)
	}

	return &TxResult{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// TransactionStatus looks up a submitted transaction
func (c *tokenClient) TransactionStatus(ctx context.Context, txHash string) (*TxReceiptStatus, error) {
	hash := common.HexToHash(txHash)

	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err == nil {
		status := &TxReceiptStatus{
			Status:      TxStatusConfirmed,
			BlockNumber: receipt.BlockNumber.Uint64(),
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			status.Status = TxStatusReverted
		}
		if receipt.ContractAddress != (common.Address{}) {
			status.ContractAddress = receipt.ContractAddress.Hex()
		}
		return status, nil
	}
	if !errors.Is(err, ethereum.NotFound) {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	_, _, err = c.client.TransactionByHash(ctx, hash)
	if err == nil {
		// Known to the node but not mined yet
		return &TxReceiptStatus{Status: TxStatusPending}, nil
	}
	if errors.Is(err, ethereum.NotFound) {
		return &TxReceiptStatus{Status: TxStatusNotFound}, nil
	}
	return nil, fmt.Errorf("failed to get transaction: %w", err)
}

func (c *tokenClient) signTx(ctx context.Context, nonce uint64, to *common.Address, gasLimit uint64, data []byte) (*types.Transaction, error) {
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    big.NewInt(0),
		Data:     data,
	})

	return types.SignTx(tx, c.signer, c.key)
}

// waitForReceipt polls for the receipt until it arrives or the receipt timeout passes
func (c *tokenClient) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.config.ReceiptTimeout)
	defer cancel()

	for {
		receipt, err := c.client.TransactionReceipt(waitCtx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, ErrReverted
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			logger.WarnCtx(ctx, "Failed to get receipt, retrying",
				zap.String("txHash", hash.Hex()),
				zap.Error(err),
			)
		}

		select {
		case <-waitCtx.Done():
			return nil, waitCtx.Err()
		case <-c.clock.After(c.config.ReceiptPollInterval):
		}
	}
}

// classifySendError separates rejections from sends with an unknown outcome.
// A JSON-RPC error means the node rejected the transaction; anything else
// (timeouts, dropped connections) may have been broadcast.
func (c *tokenClient) classifySendError(tx *types.Transaction, contractAddress common.Address, err error) error {
	if tx == nil || errors.Is(err, ErrNotSubmitted) {
		return err
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%w: %v", ErrNotSubmitted, err)
	}

	return c.pendingError(tx, contractAddress)
}

func (c *tokenClient) classifyWaitError(tx *types.Transaction, contractAddress common.Address, err error) error {
	if errors.Is(err, ErrReverted) {
		return &RevertedError{TxHash: tx.Hash().Hex()}
	}
	c.nonces.reset()
	return c.pendingError(tx, contractAddress)
}

func (c *tokenClient) pendingError(tx *types.Transaction, contractAddress common.Address) error {
	pending := &PendingError{TxHash: tx.Hash().Hex()}
	if contractAddress != (common.Address{}) {
		pending.ContractAddress = contractAddress.Hex()
	}
	return pending
}
