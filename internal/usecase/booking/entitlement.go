package booking

import (
	"context"

	domain "github.com/cutclub/cutclub-backend/internal/domain/booking"
	"github.com/cutclub/cutclub-backend/internal/timezone"
)

// ResolveEntitlement is the read-only projection of the tier ladder, exposed
// so the client UI can show what the next booking will cost.
type ResolveEntitlement struct {
	repo   domain.Repository
	params Params
}

func NewResolveEntitlement(repo domain.Repository, params Params) *ResolveEntitlement {
	return &ResolveEntitlement{repo: repo, params: params}
}

func (uc *ResolveEntitlement) Execute(
	ctx context.Context,
	clientID uint,
) (domain.Tier, error) {

	hist, err := LoadHistory(ctx, uc.repo, clientID)
	if err != nil {
		return domain.Tier{}, err
	}

	now := timezone.NowIn(uc.params.Timezone)
	return domain.ResolveTier(hist, now, uc.params.Pricing), nil
}
