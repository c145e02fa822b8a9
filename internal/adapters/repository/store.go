// Package repository defines the beneficiary registry interface and errors.
package repository

import (
	"context"

	"github.com/okian/nourish/internal/domain/model"
	"github.com/okian/nourish/internal/domain/types"
)

// Store provides read/write access to assessed beneficiary records.
type Store interface {
	// Upsert inserts or replaces a record by beneficiary ID.
	// Returns true if the record was newly inserted.
	Upsert(ctx context.Context, rec model.BeneficiaryRecord) (bool, error)

	// Get returns the record for a beneficiary ID.
	// Returns ErrNotFound if the beneficiary is unknown.
	Get(ctx context.Context, id string) (model.BeneficiaryRecord, error)

	// List returns records ordered by risk score descending, optionally
	// filtered by risk category (empty means no filter), capped at limit.
	List(ctx context.Context, category model.RiskCategory, limit int) ([]model.BeneficiaryRecord, error)

	// TopRisk returns the n highest-risk entries for operator triage.
	TopRisk(ctx context.Context, n int) ([]types.Entry, error)

	// Stats computes the population-level dashboard aggregates.
	Stats(ctx context.Context) (types.DashboardStats, error)

	// Count returns the number of beneficiaries tracked in the registry.
	Count(ctx context.Context) int
}
