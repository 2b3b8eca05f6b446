// Package ports declares the persistence collaborator the boards and the
// automation engine talk to.
package ports

import (
	"context"
	"errors"

	"opsboard/internal/core"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownEntity = errors.New("unknown entity")
)

type (
	// Collection is the per-entity list/create/update/delete surface.
	Collection interface {
		List(ctx context.Context) ([]core.Record, error)
		Get(ctx context.Context, id string) (core.Record, error)
		// Create stores fields and returns the stored record with its id.
		Create(ctx context.Context, fields core.Record) (core.Record, error)
		// Update merges fields into the record. Last write wins.
		Update(ctx context.Context, id string, fields core.Record) error
		Delete(ctx context.Context, id string) error
	}

	// Store resolves a collection by entity name.
	Store interface {
		Collection(entity string) (Collection, error)
	}
)
