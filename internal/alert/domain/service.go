package domain

import "context"

type Service interface {
	// Evaluate loads a fresh snapshot and runs every rule against it.
	Evaluate(ctx context.Context) ([]Alert, error)
}
