package chat

import (
	"context"
	"fmt"

	"github.com/ngo-connect-api/internal/domain"
)

type individualGetter interface {
	Get(ctx context.Context, individualID string) (*domain.Individual, error)
}

type ngoGetter interface {
	Get(ctx context.Context, ngoID string) (*domain.NGO, error)
}

// Directory resolves account ids to display names across both account kinds.
type Directory struct {
	individuals individualGetter
	ngos        ngoGetter
}

func NewDirectory(individuals individualGetter, ngos ngoGetter) *Directory {
	return &Directory{individuals: individuals, ngos: ngos}
}

func (d *Directory) DisplayName(ctx context.Context, userID, model string) (string, error) {
	switch model {
	case domain.KindIndividual:
		ind, err := d.individuals.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		return ind.Name(), nil
	case domain.KindNGO:
		n, err := d.ngos.Get(ctx, userID)
		if err != nil {
			return "", err
		}
		return n.Name, nil
	default:
		return "", fmt.Errorf("unknown account kind %q: %w", model, domain.ErrBadRequest)
	}
}
