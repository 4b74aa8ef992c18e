package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-launchpad/internal/api/middleware"
	"github.com/feral-file/ff-launchpad/internal/api/rest/dto"
	apierrors "github.com/feral-file/ff-launchpad/internal/api/shared/errors"
	"github.com/feral-file/ff-launchpad/internal/coordinator"
	"github.com/feral-file/ff-launchpad/internal/logo"
)

// LOGO_FORM_FIELD is the multipart field carrying an uploaded logo
const LOGO_FORM_FIELD = "logo"

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetAsset returns the owner's asset
	// GET /api/v1/owners/:owner_id/asset
	GetAsset(c *gin.Context)

	// ListActions returns the owner's action history, oldest first
	// GET /api/v1/owners/:owner_id/actions
	ListActions(c *gin.Context)

	// UploadLogo stores a logo for a later deployment
	// POST /api/v1/owners/:owner_id/logo (multipart field "logo" or raw image body)
	UploadLogo(c *gin.Context)

	// CreateAsset deploys the owner's token
	// POST /api/v1/owners/:owner_id/asset
	CreateAsset(c *gin.Context)

	// RequestUnlock returns the payment instructions for enabling trading
	// POST /api/v1/owners/:owner_id/unlock/request
	RequestUnlock(c *gin.Context)

	// ConfirmUnlock verifies the unlock payment and enables trading
	// POST /api/v1/owners/:owner_id/unlock/confirm
	ConfirmUnlock(c *gin.Context)

	// RequestListing returns the payment instructions for the listing submission
	// POST /api/v1/owners/:owner_id/listing/request
	RequestListing(c *gin.Context)

	// ConfirmListing verifies the listing payment and submits the listing
	// POST /api/v1/owners/:owner_id/listing/confirm
	ConfirmListing(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	coordinator coordinator.Coordinator
	logos       logo.Processor
	maxLogoSize int64
}

// NewHandler creates a new REST API handler
func NewHandler(coord coordinator.Coordinator, logos logo.Processor, maxLogoSize int64) Handler {
	if maxLogoSize <= 0 {
		maxLogoSize = logo.DEFAULT_MAX_SIZE
	}
	return &handler{
		coordinator: coord,
		logos:       logos,
		maxLogoSize: maxLogoSize,
	}
}

// ownerID returns the owner of the request, or false after responding when the caller may not act for it
func ownerID(c *gin.Context) (string, bool) {
	owner := c.Param("owner_id")
	if owner == "" {
		respondBadRequest(c, "owner_id is required")
		return "", false
	}
	if !middleware.OwnerAllowed(c, owner) {
		respondForbidden(c, "Not allowed to act for this owner")
		return "", false
	}
	return owner, true
}

// GetAsset returns the owner's asset
func (h *handler) GetAsset(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	asset, err := h.coordinator.GetAsset(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, zap.String("owner_id", owner))
		return
	}

	c.JSON(http.StatusOK, dto.NewAssetResponse(*asset))
}

// ListActions returns the owner's action history
func (h *handler) ListActions(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	records, err := h.coordinator.ListActions(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, zap.String("owner_id", owner))
		return
	}

	c.JSON(http.StatusOK, dto.NewListActionsResponse(records))
}

// UploadLogo stores a logo and returns its reference
func (h *handler) UploadLogo(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	raw, err := h.readLogo(c)
	if err != nil {
		if errors.Is(err, logo.ErrTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apierrors.NewPayloadTooLargeError("Logo is too large", err.Error()))
			return
		}
		respondValidationError(c, err.Error())
		return
	}

	logoRef, err := h.logos.Process(c.Request.Context(), raw, owner)
	if err != nil {
		switch {
		case errors.Is(err, logo.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, apierrors.NewPayloadTooLargeError("Logo is too large", err.Error()))
		case errors.Is(err, logo.ErrEmpty), errors.Is(err, logo.ErrUnsupportedFormat), errors.Is(err, logo.ErrInvalidImage):
			respondValidationError(c, err.Error())
		default:
			respondError(c, fmt.Errorf("failed to store logo: %w", err), zap.String("owner_id", owner))
		}
		return
	}

	c.JSON(http.StatusCreated, dto.UploadLogoResponse{LogoRef: logoRef})
}

// readLogo reads the upload from the multipart field or, failing that, the raw body
func (h *handler) readLogo(c *gin.Context) ([]byte, error) {
	// Allow some room for multipart framing
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxLogoSize+64*1024)

	var reader io.Reader = c.Request.Body
	if file, err := c.FormFile(LOGO_FORM_FIELD); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else if c.ContentType() == gin.MIMEMultipartPOSTForm {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, logo.ErrTooLarge
		}
		return nil, fmt.Errorf("multipart field %q is required", LOGO_FORM_FIELD)
	}

	raw, err := io.ReadAll(io.LimitReader(reader, h.maxLogoSize+1))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, logo.ErrTooLarge
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > h.maxLogoSize {
		return nil, logo.ErrTooLarge
	}
	return raw, nil
}

// CreateAsset deploys the owner's token
func (h *handler) CreateAsset(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.coordinator.RequestCreation(c.Request.Context(), owner, req.Identity(), req.LogoRef)
	if err != nil {
		respondError(c, err, zap.String("owner_id", owner))
		return
	}

	c.JSON(http.StatusCreated, dto.CreateAssetResponse{
		Asset: dto.NewAssetResponse(result.Asset),
		TxRef: result.TxRef,
	})
}

// RequestUnlock returns the unlock payment instructions
func (h *handler) RequestUnlock(c *gin.Context) {
	h.requestPayment(c, h.coordinator.RequestUnlock)
}

// ConfirmUnlock verifies the unlock payment and enables trading
func (h *handler) ConfirmUnlock(c *gin.Context) {
	h.confirm(c, h.coordinator.ConfirmUnlock)
}

// RequestListing returns the listing payment instructions
func (h *handler) RequestListing(c *gin.Context) {
	h.requestPayment(c, h.coordinator.RequestListing)
}

// ConfirmListing verifies the listing payment and submits the listing
func (h *handler) ConfirmListing(c *gin.Context) {
	h.confirm(c, h.coordinator.ConfirmListing)
}

func (h *handler) requestPayment(c *gin.Context, request func(ctx context.Context, ownerID string) (*coordinator.PaymentInstructions, error)) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	instructions, err := request(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, zap.String("owner_id", owner))
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentInstructionsResponse(*instructions))
}

func (h *handler) confirm(c *gin.Context, confirm func(ctx context.Context, ownerID string) (*coordinator.ConfirmResult, error)) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	result, err := confirm(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err, zap.String("owner_id", owner))
		return
	}

	c.JSON(http.StatusOK, dto.NewConfirmResponse(*result))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "ff-launchpad-api",
	})
}
