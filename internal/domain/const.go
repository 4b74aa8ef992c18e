package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// Blockchain constants
	ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Payment reference prefixes
	UNLOCK_REFERENCE_PREFIX  = "UNLOCK"
	LISTING_REFERENCE_PREFIX = "LISTING"

	// DEFAULT_PAYMENT_WINDOW is how far back the verifier looks for a payment
	DEFAULT_PAYMENT_WINDOW = time.Hour
)

// NewReferenceCode generates an opaque, unguessable reference code.
// The random part of the ULID is drawn from crypto/rand.
func NewReferenceCode(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// PaymentReference builds the reference shown to the user for a paid action
func PaymentReference(kind ActionKind, referenceCode string) string {
	prefix := UNLOCK_REFERENCE_PREFIX
	if kind == ActionKindSubmitListing {
		prefix = LISTING_REFERENCE_PREFIX
	}
	return prefix + "-" + strings.ToUpper(referenceCode)
}
