package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/adapter"
	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/logger"
)

const PROVIDER_NAME = "listing"

// DefaultTimeout is used for the listing HTTP client when none is configured
const DefaultTimeout = 30 * time.Second

var (
	// ErrRejected is returned when the listing service answered and refused the submission
	ErrRejected = errors.New("listing submission rejected")

	// ErrUnreachable is returned when the submission may or may not have been received
	ErrUnreachable = errors.New("listing service unreachable")

	// ErrMalformed is returned when the listing service response could not be parsed
	ErrMalformed = errors.New("malformed listing response")
)

// Status is the review status of a listing submission
type Status string

const (
	StatusReceived Status = "received"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Final reports whether the status will not change anymore
func (s Status) Final() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Submission is the listing request sent for a token
type Submission struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	TotalSupply     uint64 `json:"total_supply"`
	ContractAddress string `json:"contract_address"`
	Chain           string `json:"chain"`
	LogoRef         string `json:"logo_ref,omitempty"`
	// Reference is sent as the idempotency key so a retried submission is not duplicated
	Reference string `json:"reference"`
}

// Receipt is returned by the listing service for an accepted submission
type Receipt struct {
	SubmissionID string `json:"submission_id"`
	Status       Status `json:"status"`
}

// Client defines an interface for listing service operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/listing_client.go -package=mocks -mock_names=Client=MockListingClient
type Client interface {
	// Submit sends a listing submission
	Submit(ctx context.Context, submission Submission) (*Receipt, error)

	// Status returns the review status of a previous submission
	Status(ctx context.Context, submissionID string) (Status, error)
}

type httpClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	baseURL    string
	apiKey     string
}

// NewClient creates a listing client talking to the listing service at baseURL
func NewClient(client adapter.HTTPClient, json adapter.JSON, baseURL string, apiKey string) Client {
	return &httpClient{
		httpClient: client,
		json:       json,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (c *httpClient) headers(reference string) map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["X-API-Key"] = c.apiKey
	}
	if reference != "" {
		headers["Idempotency-Key"] = reference
	}
	return headers
}

// Submit posts the submission to the listing service
func (c *httpClient) Submit(ctx context.Context, submission Submission) (*Receipt, error) {
	body, err := c.json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode submission: %v", ErrRejected, err)
	}

	resp, err := c.httpClient.Post(ctx, c.baseURL+"/submissions", "application/json", bytes.NewReader(body), c.headers(submission.Reference))
	if err != nil {
		var statusErr *adapter.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			return nil, fmt.Errorf("%w: http %d: %s", ErrRejected, statusErr.StatusCode, statusErr.Body)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var receipt Receipt
	if err := c.json.Unmarshal(resp, &receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if receipt.SubmissionID == "" {
		return nil, fmt.Errorf("%w: missing submission id", ErrMalformed)
	}
	if receipt.Status == StatusRejected {
		return nil, fmt.Errorf("%w: submission %s", ErrRejected, receipt.SubmissionID)
	}

	return &receipt, nil
}

// Status fetches the review status of a submission
func (c *httpClient) Status(ctx context.Context, submissionID string) (Status, error) {
	endpoint := fmt.Sprintf("%s/submissions/%s", c.baseURL, url.PathEscape(submissionID))

	resp, err := c.httpClient.GetBytes(ctx, endpoint, c.headers(""))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	var receipt Receipt
	if err := c.json.Unmarshal(resp, &receipt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch receipt.Status {
	case StatusReceived, StatusAccepted, StatusRejected:
		return receipt.Status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrMalformed, receipt.Status)
}

// manualClient records submissions for operators to forward by hand.
// It is used when no listing service is configured.
type manualClient struct {
	clock adapter.Clock
}

// NewManualClient creates a client that accepts every submission and logs it for manual review
func NewManualClient(clock adapter.Clock) Client {
	return &manualClient{clock: clock}
}

func (c *manualClient) Submit(ctx context.Context, submission Submission) (*Receipt, error) {
	id, err := ulid.New(ulid.Timestamp(c.clock.Now()), ulid.DefaultEntropy())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	submissionID := "manual-" + strings.ToLower(id.String())

	logger.InfoCtx(ctx, "Listing submission queued for manual review",
		zap.String("submissionID", submissionID),
		zap.String("symbol", submission.Symbol),
		zap.String("contractAddress", submission.ContractAddress),
		zap.String("reference", submission.Reference),
	)

	return &Receipt{SubmissionID: submissionID, Status: StatusReceived}, nil
}

func (c *manualClient) Status(ctx context.Context, submissionID string) (Status, error) {
	return StatusReceived, nil
}

// NewSubmission builds a submission for a deployed asset
func NewSubmission(chain domain.Chain, identity domain.Identity, contractAddress string, logoRef string, reference string) Submission {
	return Submission{
		Name:            identity.Name,
		Symbol:          identity.Symbol,
		TotalSupply:     identity.TotalSupply,
		ContractAddress: contractAddress,
		Chain:           string(chain),
		LogoRef:         logoRef,
		Reference:       reference,
	}
}
