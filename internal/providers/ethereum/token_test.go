package ethereum_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/lock"
	"github.com/feral-file/ff-launchpad/internal/logger"
	"github.com/feral-file/ff-launchpad/internal/mocks"
	ethprovider "github.com/feral-file/ff-launchpad/internal/providers/ethereum"
)

const (
	testPrivateKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testContract   = "0x9999999999999999999999999999999999999999"

	testArtifact = `{
		"abi": [
			{"type":"constructor","inputs":[
				{"name":"name_","type":"string"},
				{"name":"symbol_","type":"string"},
				{"name":"totalSupply_","type":"uint256"},
				{"name":"devWallet_","type":"address"},
				{"name":"marketingWallet_","type":"address"},
				{"name":"liquidityWallet_","type":"address"}
			],"stateMutability":"nonpayable"},
			{"type":"function","name":"enableTrading","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
		],
		"bytecode": "0x6080604052"
	}`
)

var testWallets = domain.WalletSet{
	Dev:       "0x1111111111111111111111111111111111111111",
	Marketing: "0x2222222222222222222222222222222222222222",
	Liquidity: "0x3333333333333333333333333333333333333333",
}

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// testRPCError mimics a JSON-RPC error returned by the node
type testRPCError struct {
	msg string
}

func (e testRPCError) Error() string  { return e.msg }
func (e testRPCError) ErrorCode() int { return -32000 }

type tokenTestEnv struct {
	ctrl    *gomock.Controller
	eth     *mocks.MockEthClient
	clock   *mocks.MockClock
	client  ethprovider.TokenClient
	account common.Address
}

func setupTokenClient(t *testing.T, receiptTimeout time.Duration) *tokenTestEnv {
	return setupTokenClientWithSigner(t, receiptTimeout, nil)
}

func setupTokenClientWithSigner(t *testing.T, receiptTimeout time.Duration, signerLock lock.Locker) *tokenTestEnv {
	ctrl := gomock.NewController(t)
	eth := mocks.NewMockEthClient(ctrl)
	clock := mocks.NewMockClock(ctrl)

	artifact, err := ethprovider.ParseArtifact(strings.NewReader(testArtifact))
	require.NoError(t, err)

	client, err := ethprovider.NewTokenClient(eth, clock, ethprovider.Config{
		ChainID:               big.NewInt(97),
		PrivateKey:            testPrivateKey,
		Artifact:              artifact,
		DeployGasLimit:        5_000_000,
		EnableTradingGasLimit: 200_000,
		ReceiptTimeout:        receiptTimeout,
		ReceiptPollInterval:   time.Millisecond,
		SignerLock:            signerLock,
	})
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testPrivateKey)
	require.NoError(t, err)

	return &tokenTestEnv{
		ctrl:    ctrl,
		eth:     eth,
		clock:   clock,
		client:  client,
		account: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func immediately(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func TestTokenClient_Deploy_Success(t *testing.T) {
	env := setupTokenClient(t, time.Minute)
	ctx := context.Background()
	expectedAddress := crypto.CreateAddress(env.account, 7)

	var sent *types.Transaction
	env.eth.EXPECT().PendingNonceAt(gomock.Any(), env.account).Return(uint64(7), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(5_000_000_000), nil)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		sent = tx
		return nil
	})
	gomock.InOrder(
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound),
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
			Status:          types.ReceiptStatusSuccessful,
			ContractAddress: expectedAddress,
			BlockNumber:     big.NewInt(100),
		}, nil),
	)
	env.clock.EXPECT().After(time.Millisecond).DoAndReturn(immediately)

	result, err := env.client.Deploy(ctx, domain.Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: 1_000_000}, testWallets)
	require.NoError(t, err)
	assert.Equal(t, expectedAddress.Hex(), result.ContractAddress)
	assert.Equal(t, uint64(100), result.BlockNumber)

	require.NotNil(t, sent)
	assert.Equal(t, sent.Hash().Hex(), result.TxHash)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, uint64(5_000_000), sent.Gas())
	assert.Nil(t, sent.To())
	assert.True(t, bytes.HasPrefix(sent.Data(), common.FromHex("0x6080604052")))

	sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(97)), sent)
	require.NoError(t, err)
	assert.Equal(t, env.account, sender)
}

func TestTokenClient_Deploy_ReceiptTimeout(t *testing.T) {
	env := setupTokenClient(t, 20*time.Millisecond)

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(nil)
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound).AnyTimes()
	env.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		return time.After(5 * time.Millisecond)
	}).AnyTimes()

	result, err := env.client.Deploy(context.Background(), domain.Identity{Name: "DogeX", Symbol: "DOGX", TotalSupply: 1}, testWallets)
	assert.Nil(t, result)

	var pending *ethprovider.PendingError
	require.ErrorAs(t, err, &pending)
	assert.NotEmpty(t, pending.TxHash)
	assert.Equal(t, crypto.CreateAddress(env.account, 3).Hex(), pending.ContractAddress)
}

func TestTokenClient_EnableTrading_Reverted(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(1), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		assert.Equal(t, common.HexToAddress(testContract), *tx.To())
		assert.Equal(t, uint64(200_000), tx.Gas())
		assert.Equal(t, crypto.Keccak256([]byte("enableTrading()"))[:4], tx.Data())
		return nil
	})
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(5),
	}, nil)

	result, err := env.client.EnableTrading(context.Background(), testContract)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ethprovider.ErrReverted)
}

func TestTokenClient_EnableTrading_InvalidAddress(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	_, err := env.client.EnableTrading(context.Background(), "bogus")
	assert.ErrorIs(t, err, ethprovider.ErrNotSubmitted)
}

func TestTokenClient_SendRejectedResyncsNonce(t *testing.T) {
	env := setupTokenClient(t, time.Minute)
	ctx := context.Background()

	gomock.InOrder(
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(4), nil),
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(5), nil),
	)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil).Times(2)

	var nonces []uint64
	gomock.InOrder(
		env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			nonces = append(nonces, tx.Nonce())
			return testRPCError{msg: "nonce too low"}
		}),
		env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			nonces = append(nonces, tx.Nonce())
			return nil
		}),
	)
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(9),
	}, nil)

	_, err := env.client.EnableTrading(ctx, testContract)
	assert.ErrorIs(t, err, ethprovider.ErrNotSubmitted)

	_, err = env.client.EnableTrading(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 5}, nonces)
}

func TestTokenClient_SendNetworkErrorIsPending(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(0), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(errors.New("i/o timeout"))

	_, err := env.client.EnableTrading(context.Background(), testContract)
	var pending *ethprovider.PendingError
	require.ErrorAs(t, err, &pending)
	assert.NotEmpty(t, pending.TxHash)
	assert.Empty(t, pending.ContractAddress)
}

func TestTokenClient_ConcurrentSubmissionsUseDistinctNonces(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(10), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil).AnyTimes()

	var mu sync.Mutex
	seen := make(map[uint64]bool)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		mu.Lock()
		defer mu.Unlock()
		assert.False(t, seen[tx.Nonce()], "nonce %d reused", tx.Nonce())
		seen[tx.Nonce()] = true
		return nil
	}).Times(5)
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(1),
	}, nil).Times(5)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.client.EnableTrading(context.Background(), testContract)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 5)
	for n := uint64(10); n < 15; n++ {
		assert.True(t, seen[n])
	}
}

func successReceipt() *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}
}

func TestTokenClient_SubmitHookRunsBeforeBroadcast(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	var recorded []string
	ctx := ethprovider.WithSubmitHook(context.Background(), func(ctx context.Context, txHash string) error {
		recorded = append(recorded, txHash)
		return nil
	})

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(2), nil)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil)
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		require.Len(t, recorded, 1, "hash must be recorded before the transaction is sent")
		assert.Equal(t, tx.Hash().Hex(), recorded[0])
		return nil
	})
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(successReceipt(), nil)

	result, err := env.client.EnableTrading(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, []string{result.TxHash}, recorded)
}

func TestTokenClient_SubmitHookErrorAbortsWithoutSending(t *testing.T) {
	env := setupTokenClient(t, time.Minute)

	failing := ethprovider.WithSubmitHook(context.Background(), func(ctx context.Context, txHash string) error {
		return errors.New("database unavailable")
	})

	env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(2), nil).Times(2)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil).Times(2)

	_, err := env.client.EnableTrading(failing, testContract)
	assert.ErrorIs(t, err, ethprovider.ErrNotSubmitted)

	// The nonce was never used
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		assert.Equal(t, uint64(2), tx.Nonce())
		return nil
	})
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(successReceipt(), nil)

	_, err = env.client.EnableTrading(context.Background(), testContract)
	require.NoError(t, err)
}

func TestTokenClient_ReceiptTimeoutResyncsNonce(t *testing.T) {
	env := setupTokenClient(t, 20*time.Millisecond)
	ctx := context.Background()

	// The first transaction is dropped from the mempool, the node hands its nonce out again
	gomock.InOrder(
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil),
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil),
	)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil).Times(2)

	var nonces []uint64
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		nonces = append(nonces, tx.Nonce())
		return nil
	}).Times(2)
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ common.Hash) (*types.Receipt, error) {
		if len(nonces) < 2 {
			return nil, ethereum.NotFound
		}
		return successReceipt(), nil
	}).MinTimes(2)
	env.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		return time.After(5 * time.Millisecond)
	}).AnyTimes()

	_, err := env.client.EnableTrading(ctx, testContract)
	var pending *ethprovider.PendingError
	require.ErrorAs(t, err, &pending)

	_, err = env.client.EnableTrading(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 3}, nonces)
}

func TestTokenClient_SignerLockSerialisesAcrossInstances(t *testing.T) {
	ctrl := gomock.NewController(t)
	signerLock := mocks.NewMockLocker(ctrl)
	env := setupTokenClientWithSigner(t, time.Minute, signerLock)
	ctx := context.Background()

	var held, released int
	signerLock.EXPECT().Lock(gomock.Any(), env.account.Hex()).DoAndReturn(func(ctx context.Context, key string) (func(), error) {
		held++
		return func() { released++ }, nil
	}).Times(3)

	// The node lags behind our own transaction once, then reflects one sent by another instance
	gomock.InOrder(
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(5), nil),
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(5), nil),
		env.eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(9), nil),
	)
	env.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil).Times(3)

	var nonces []uint64
	env.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		assert.Equal(t, held, released+1, "send must happen while the signer lock is held")
		nonces = append(nonces, tx.Nonce())
		return nil
	}).Times(3)
	env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(successReceipt(), nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := env.client.EnableTrading(ctx, testContract)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{5, 6, 9}, nonces)
	assert.Equal(t, 3, released)
}

func TestTokenClient_SignerLockUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	signerLock := mocks.NewMockLocker(ctrl)
	env := setupTokenClientWithSigner(t, time.Minute, signerLock)

	signerLock.EXPECT().Lock(gomock.Any(), gomock.Any()).Return(nil, lock.ErrLockTimeout)

	_, err := env.client.EnableTrading(context.Background(), testContract)
	assert.ErrorIs(t, err, ethprovider.ErrNotSubmitted)
}

func TestTokenClient_TransactionStatus(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)

	t.Run("confirmed deployment", func(t *testing.T) {
		env := setupTokenClient(t, time.Minute)
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), common.HexToHash(hash)).Return(&types.Receipt{
			Status:          types.ReceiptStatusSuccessful,
			ContractAddress: common.HexToAddress(testContract),
			BlockNumber:     big.NewInt(42),
		}, nil)

		status, err := env.client.TransactionStatus(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, ethprovider.TxStatusConfirmed, status.Status)
		assert.Equal(t, common.HexToAddress(testContract).Hex(), status.ContractAddress)
		assert.Equal(t, uint64(42), status.BlockNumber)
	})

	t.Run("reverted", func(t *testing.T) {
		env := setupTokenClient(t, time.Minute)
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(1),
		}, nil)

		status, err := env.client.TransactionStatus(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, ethprovider.TxStatusReverted, status.Status)
	})

	t.Run("pending", func(t *testing.T) {
		env := setupTokenClient(t, time.Minute)
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound)
		env.eth.EXPECT().TransactionByHash(gomock.Any(), gomock.Any()).Return(nil, true, nil)

		status, err := env.client.TransactionStatus(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, ethprovider.TxStatusPending, status.Status)
	})

	t.Run("not found", func(t *testing.T) {
		env := setupTokenClient(t, time.Minute)
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound)
		env.eth.EXPECT().TransactionByHash(gomock.Any(), gomock.Any()).Return(nil, false, ethereum.NotFound)

		status, err := env.client.TransactionStatus(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, ethprovider.TxStatusNotFound, status.Status)
	})

	t.Run("rpc error", func(t *testing.T) {
		env := setupTokenClient(t, time.Minute)
		env.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

		_, err := env.client.TransactionStatus(context.Background(), hash)
		assert.Error(t, err)
	})
}

func TestVerifyChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	eth := mocks.NewMockEthClient(ctrl)

	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(56), nil)
	assert.NoError(t, ethprovider.VerifyChain(context.Background(), eth, big.NewInt(56)))

	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(1), nil)
	assert.ErrorContains(t, ethprovider.VerifyChain(context.Background(), eth, big.NewInt(56)), "expected 56")
}

func TestParseArtifact(t *testing.T) {
	artifact, err := ethprovider.ParseArtifact(strings.NewReader(testArtifact))
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x6080604052"), artifact.Bytecode)
	assert.Len(t, artifact.ABI.Constructor.Inputs, 6)

	foundry := strings.Replace(testArtifact, `"bytecode": "0x6080604052"`, `"bytecode": {"object": "6080604052"}`, 1)
	artifact, err = ethprovider.ParseArtifact(strings.NewReader(foundry))
	require.NoError(t, err)
	assert.Equal(t, common.FromHex("0x6080604052"), artifact.Bytecode)

	_, err = ethprovider.ParseArtifact(strings.NewReader(`{"abi":[],"bytecode":"0x60"}`))
	assert.ErrorContains(t, err, "enableTrading")

	_, err = ethprovider.ParseArtifact(strings.NewReader(`{"abi":[{"type":"function","name":"enableTrading","inputs":[]}],"bytecode":"0x"}`))
	assert.ErrorContains(t, err, "empty bytecode")

	_, err = ethprovider.ParseArtifact(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestNewTokenClient_InvalidKey(t *testing.T) {
	artifact, err := ethprovider.ParseArtifact(strings.NewReader(testArtifact))
	require.NoError(t, err)

	_, err = ethprovider.NewTokenClient(nil, nil, ethprovider.Config{
		ChainID:        big.NewInt(97),
		PrivateKey:     "zz",
		Artifact:       artifact,
		ReceiptTimeout: time.Minute,
	})
	assert.ErrorContains(t, err, "private key")
}
