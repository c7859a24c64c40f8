package kudos

import "context"

// Filter narrows kudos listings.
type Filter struct {
	ReceiverProfileID string
	Search            string
	Sort              Sort
	Limit             int
}

// Repository defines persistence behaviours for kudos.
type Repository interface {
	Create(ctx context.Context, k *Kudos) error
	List(ctx context.Context, filter Filter) ([]*Kudos, error)
}
