package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultRateValue is the hourly rate created when no default rate exists yet.
const DefaultRateValue = 3000

// RateResolver picks the billing rate for an (employee, matter) pair.
//
// The cascade is: the rate of the matter's contract, then the employee's own
// rate, then the default rate. The default is created on first use.
type RateResolver struct {
	rates        RateRepository
	matters      MatterRepository
	idGenerator  func() string
	now          func() time.Time
	defaultValue float64
	logger       *slog.Logger
}

// NewRateResolver constructs a resolver that falls back to DefaultRateValue.
func NewRateResolver(rates RateRepository, matters MatterRepository, idGenerator func() string, now func() time.Time) *RateResolver {
	return NewRateResolverWithLogger(rates, matters, idGenerator, now, DefaultRateValue, nil)
}

// NewRateResolverWithLogger constructs a resolver with an explicit default value and logger.
func NewRateResolverWithLogger(rates RateRepository, matters MatterRepository, idGenerator func() string, now func() time.Time, defaultValue float64, logger *slog.Logger) *RateResolver {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if defaultValue <= 0 {
		defaultValue = DefaultRateValue
	}
	return &RateResolver{
		rates:        rates,
		matters:      matters,
		idGenerator:  idGenerator,
		now:          now,
		defaultValue: defaultValue,
		logger:       defaultLogger(logger),
	}
}

// Resolve returns the rate that applies to employeeID working on matterID.
// An unknown matter skips the contract step.
func (r *RateResolver) Resolve(ctx context.Context, employeeID, matterID string) (Rate, error) {
	if r == nil {
		return Rate{}, fmt.Errorf("RateResolver is nil")
	}
	if r.rates == nil {
		return Rate{}, fmt.Errorf("rate repository not configured")
	}

	logger := serviceLogger(ctx, r.logger, "RateResolver", "Resolve",
		"employee_id", employeeID,
		"matter_id", matterID,
	)

	if matterID != "" && r.matters != nil {
		matter, err := r.matters.GetMatter(ctx, matterID)
		switch {
		case err == nil:
			rate, err := r.rates.FindContractRate(ctx, matter.ContractID)
			if err == nil {
				logger.DebugContext(ctx, "rate resolved", "rate_id", rate.ID, "scope", RateScopeContract)
				return rate, nil
			}
			if !isNotFound(err) {
				return Rate{}, fmt.Errorf("find contract rate: %w", err)
			}
		case !isNotFound(err):
			return Rate{}, fmt.Errorf("get matter: %w", err)
		}
	}

	if employeeID != "" {
		rate, err := r.rates.FindEmployeeRate(ctx, employeeID)
		if err == nil {
			logger.DebugContext(ctx, "rate resolved", "rate_id", rate.ID, "scope", RateScopeEmployee)
			return rate, nil
		}
		if !isNotFound(err) {
			return Rate{}, fmt.Errorf("find employee rate: %w", err)
		}
	}

	now := r.now()
	rate, err := r.rates.GetOrCreateDefaultRate(ctx, Rate{
		ID:        r.idGenerator(),
		Value:     r.defaultValue,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Rate{}, fmt.Errorf("get or create default rate: %w", err)
	}
	logger.DebugContext(ctx, "rate resolved", "rate_id", rate.ID, "scope", RateScopeDefault)
	return rate, nil
}
