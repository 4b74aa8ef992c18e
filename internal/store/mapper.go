package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-launchpad/internal/domain"
	"github.com/feral-file/ff-launchpad/internal/store/schema"
)

func toSchemaAsset(a domain.Asset) schema.Asset {
	row := schema.Asset{
		OwnerID:        a.OwnerID,
		Name:           a.Identity.Name,
		Symbol:         a.Identity.Symbol,
		TotalSupply:    a.Identity.TotalSupply,
		ChainAddress:   domain.NormalizeAddress(a.ChainAddress),
		ReferenceCode:  a.ReferenceCode,
		LifecycleState: schema.LifecycleState(a.State),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.LogoRef != "" {
		logoRef := a.LogoRef
		row.LogoRef = &logoRef
	}
	return row
}

func toDomainAsset(row schema.Asset) domain.Asset {
	asset := domain.Asset{
		OwnerID: row.OwnerID,
		Identity: domain.Identity{
			Name:        row.Name,
			Symbol:      row.Symbol,
			TotalSupply: row.TotalSupply,
		},
		ChainAddress:  row.ChainAddress,
		ReferenceCode: row.ReferenceCode,
		State:         domain.LifecycleState(row.LifecycleState),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.LogoRef != nil {
		asset.LogoRef = *row.LogoRef
	}
	return asset
}

func toSchemaActionRecord(r domain.ActionRecord) (schema.ActionRecord, error) {
	row := schema.ActionRecord{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		ActionKind:   schema.ActionKind(r.Kind),
		ChainTxRef:   r.ChainTxRef,
		PaymentTxRef: r.PaymentTxRef,
		Outcome:      schema.ActionOutcome(r.Outcome),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.AssetAddress != "" {
		address := domain.NormalizeAddress(r.AssetAddress)
		row.AssetAddress = &address
	}
	if r.Details != nil {
		details, err := json.Marshal(r.Details)
		if err != nil {
			return schema.ActionRecord{}, fmt.Errorf("failed to marshal action details: %w", err)
		}
		row.Details = datatypes.JSON(details)
	}
	return row, nil
}

func toDomainActionRecord(row schema.ActionRecord) (domain.ActionRecord, error) {
	record := domain.ActionRecord{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		Kind:         domain.ActionKind(row.ActionKind),
		ChainTxRef:   row.ChainTxRef,
		PaymentTxRef: row.PaymentTxRef,
		Outcome:      domain.ActionOutcome(row.Outcome),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.AssetAddress != nil {
		record.AssetAddress = *row.AssetAddress
	}
	if len(row.Details) > 0 && string(row.Details) != "null" {
		var details domain.DeployDetails
		if err := json.Unmarshal(row.Details, &details); err != nil {
			return domain.ActionRecord{}, fmt.Errorf("failed to unmarshal action details: %w", err)
		}
		record.Details = &details
	}
	return record, nil
}

func toDomainActionRecords(rows []schema.ActionRecord) ([]domain.ActionRecord, error) {
	records := make([]domain.ActionRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toDomainActionRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
