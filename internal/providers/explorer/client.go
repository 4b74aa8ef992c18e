package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/ratelimit"
)

const PROVIDER_NAME = "explorer"

// noTransactionsMessage is reported with status "0" for wallets without history
const noTransactionsMessage = "No transactions found"

var (
	// ErrExplorerRequest is returned when the explorer could not be reached
	ErrExplorerRequest = errors.New("explorer request failed")

	// ErrExplorerStatus is returned when the explorer answered with a non-success status
	ErrExplorerStatus = errors.New("explorer reported failure")

	// ErrExplorerMalformed is returned when the explorer response could not be parsed
	ErrExplorerMalformed = errors.New("malformed explorer response")
)

// response is the envelope of the etherscan-family account API
type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Transaction is a single entry of the txlist action
type Transaction struct {
	Hash             string `json:"hash"`
	TimeStamp        string `json:"timeStamp"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Input            string `json:"input"`
	IsError          string `json:"isError"`
	TxReceiptStatus  string `json:"txreceipt_status"`
	BlockNumber      string `json:"blockNumber"`
	Confirmations    string `json:"confirmations"`
	ContractAddress  string `json:"contractAddress"`
	FunctionName     string `json:"functionName,omitempty"`
	TransactionIndex string `json:"transactionIndex"`
}

// Client defines an interface for block explorer operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/explorer_client.go -package=mocks -mock_names=Client=MockExplorerClient
type Client interface {
	// FetchTransfers returns the native transfers of wallet, newest first
	FetchTransfers(ctx context.Context, wallet string) ([]domain.Transfer, error)
}

// bscscanClient talks to a BscScan compatible explorer
type bscscanClient struct {
	httpClient     adapter.HTTPClient
	rateLimitProxy ratelimit.Proxy
	json           adapter.JSON
	baseURL        string
	apiKey         string
}

// NewClient creates a new explorer client. rateLimitProxy may be nil.
func NewClient(httpClient adapter.HTTPClient, rateLimitProxy ratelimit.Proxy, json adapter.JSON, baseURL string, apiKey string) Client {
	return &bscscanClient{
		httpClient:     httpClient,
		rateLimitProxy: rateLimitProxy,
		json:           json,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
	}
}

// FetchTransfers retrieves the transaction list of wallet
func (c *bscscanClient) FetchTransfers(ctx context.Context, wallet string) ([]domain.Transfer, error) {
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: invalid wallet address %q", ErrExplorerRequest, wallet)
	}

	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "txlist")
	query.Set("address", wallet)
	query.Set("startblock", "0")
	query.Set("endblock", "99999999")
	query.Set("sort", "desc")
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}
	endpoint := c.baseURL + "?" + query.Encode()

	body, err := ratelimit.Request(ctx, c.rateLimitProxy, PROVIDER_NAME, func(ctx context.Context) ([]byte, error) {
		return c.httpClient.GetBytes(ctx, endpoint, nil)
	})
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: http %d", ErrExplorerStatus, statusErr.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrExplorerRequest, err)
	}

	var resp response
	if err := c.json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplorerMalformed, err)
	}

	if resp.Status != "1" {
		if resp.Message == noTransactionsMessage {
			return []domain.Transfer{}, nil
		}
		// On failure the result field carries a human readable reason
		var reason string
		_ = c.json.Unmarshal(resp.Result, &reason)
		return nil, fmt.Errorf("%w: status=%q message=%q result=%q", ErrExplorerStatus, resp.Status, resp.Message, reason)
	}

	var txs []Transaction
	if err := c.json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplorerMalformed, err)
	}

	transfers := make([]domain.Transfer, 0, len(txs))
	for _, tx := range txs {
		transfer, err := tx.toTransfer()
		if err != nil {
			return nil, fmt.Errorf("%w: tx %s: %v", ErrExplorerMalformed, tx.Hash, err)
		}
		transfers = append(transfers, transfer)
	}

	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Timestamp.After(transfers[j].Timestamp)
	})

	return transfers, nil
}

// toTransfer converts an explorer transaction into a domain transfer
func (tx Transaction) toTransfer() (domain.Transfer, error) {
	ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("invalid timeStamp %q", tx.TimeStamp)
	}

	value, ok := new(big.Int).SetString(tx.Value, 10)
	if !ok || value.Sign() < 0 {
		return domain.Transfer{}, fmt.Errorf("invalid value %q", tx.Value)
	}

	if tx.Hash == "" {
		return domain.Transfer{}, errors.New("missing hash")
	}

	return domain.Transfer{
		Timestamp: time.Unix(ts, 0).UTC(),
		From:      tx.From,
		To:        tx.To,
		Value:     value,
		TxRef:     tx.Hash,
		Input:     tx.Input,
		Succeeded: tx.succeeded(),
	}, nil
}

// succeeded reports whether the transaction executed without error.
// txreceipt_status is empty for pre-Byzantium transactions.
func (tx Transaction) succeeded() bool {
	if tx.IsError != "" && tx.IsError != "0" {
		return false
	}
	return tx.TxReceiptStatus == "" || tx.TxReceiptStatus == "1"
}
