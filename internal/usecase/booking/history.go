package booking

import (
	"context"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
)

// LoadHistory assembles the entitlement snapshot for one client. It stops
// loading as soon as the resolver's ladder is decided: an active subscription
// makes the trial and second-cut lookups irrelevant.
func LoadHistory(
	ctx context.Context,
	repo domain.Repository,
	clientID uint,
) (domain.History, error) {

	var h domain.History

	sub, err := repo.ActiveSubscription(ctx, clientID)
	if err != nil {
		return h, err
	}

	if sub != nil {
		h.Subscription = sub

		used, err := repo.CountMembershipUsed(
			ctx,
			clientID,
			sub.CurrentPeriodStart,
			sub.NextRenewalAt,
		)
		if err != nil {
			return h, err
		}
		h.UsedThisPeriod = used
		return h, nil
	}

	hasTrial, err := repo.HasNonCanceledKind(ctx, clientID, string(domain.KindTrialFree))
	if err != nil {
		return h, err
	}
	h.HasTrial = hasTrial

	if !hasTrial {
		return h, nil
	}

	hasSecond, err := repo.HasNonCanceledKind(ctx, clientID, string(domain.KindDiscountSecond))
	if err != nil {
		return h, err
	}
	h.HasSecondCut = hasSecond

	if !hasSecond {
		trial, err := repo.LatestCompletedTrial(ctx, clientID)
		if err != nil {
			return h, err
		}
		if trial != nil {
			h.TrialCompletedAt = trial.CompletedAt
		}
	}

	return h, nil
}
