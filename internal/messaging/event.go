package messaging

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

// SUBJECT_PREFIX is the root of every subject published by the launchpad
const SUBJECT_PREFIX = "launchpad"

// EventType is the type of a launchpad event
type EventType string

const (
	// EventTypeAssetState is published when an asset reaches a lifecycle state
	EventTypeAssetState EventType = "asset_state"
	// EventTypeAction is published when an action record is opened or closed
	EventTypeAction EventType = "action"
	// EventTypeConsistencyFault is published when the chain and the store disagree
	EventTypeConsistencyFault EventType = "consistency_fault"
)

// Event is a launchpad lifecycle event
type Event struct {
	ID           string                `json:"id"`
	Type         EventType             `json:"type"`
	OwnerID      string                `json:"owner_id"`
	AssetAddress string                `json:"asset_address,omitempty"`
	State        domain.LifecycleState `json:"state,omitempty"`
	ActionKind   domain.ActionKind     `json:"action_kind,omitempty"`
	Outcome      domain.ActionOutcome  `json:"outcome,omitempty"`
	TxRef        string                `json:"tx_ref,omitempty"`
	Message      string                `json:"message,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
}

func newEvent(eventType EventType, ownerID string, now time.Time) *Event {
	return &Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:       eventType,
		OwnerID:    ownerID,
		OccurredAt: now,
	}
}

// NewAssetStateEvent creates an event for an asset reaching its current state
func NewAssetStateEvent(asset domain.Asset, now time.Time) *Event {
	e := newEvent(EventTypeAssetState, asset.OwnerID, now)
	e.AssetAddress = asset.ChainAddress
	e.State = asset.State
	return e
}

// NewActionEvent creates an event for an action record outcome
func NewActionEvent(record domain.ActionRecord, now time.Time) *Event {
	e := newEvent(EventTypeAction, record.OwnerID, now)
	e.AssetAddress = record.AssetAddress
	e.ActionKind = record.Kind
	e.Outcome = record.Outcome
	if record.ChainTxRef != nil {
		e.TxRef = *record.ChainTxRef
	}
	return e
}

// NewConsistencyFaultEvent creates an operator alert
func NewConsistencyFaultEvent(ownerID string, kind domain.ActionKind, txRef string, cause error, now time.Time) *Event {
	e := newEvent(EventTypeConsistencyFault, ownerID, now)
	e.ActionKind = kind
	e.TxRef = txRef
	if cause != nil {
		e.Message = cause.Error()
	}
	return e
}

// Subject returns the subject the event is published on
func (e *Event) Subject() string {
	// Format: launchpad.assets.{state}, launchpad.actions.{kind}.{outcome}, launchpad.alerts.{type}
	switch e.Type {
	case EventTypeAssetState:
		return fmt.Sprintf("%s.assets.%s", SUBJECT_PREFIX, e.State)
	case EventTypeAction:
		return fmt.Sprintf("%s.actions.%s.%s", SUBJECT_PREFIX, e.ActionKind, e.Outcome)
	default:
		return fmt.Sprintf("%s.alerts.%s", SUBJECT_PREFIX, strings.ToLower(string(e.Type)))
	}
}
