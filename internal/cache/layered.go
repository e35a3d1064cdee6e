package cache

import (
	"context"
	"errors"
)

// Layered chains stores, fastest first.
//
// Get probes each tier in order and copies a hit into every faster tier.
// Put and Delete go to all tiers.
type Layered struct {
	tiers []Store
}

// NewLayered builds a layered store from tiers. Nil tiers are skipped.
func NewLayered(tiers ...Store) *Layered {
	l := &Layered{}
	for _, t := range tiers {
		if t != nil {
			l.tiers = append(l.tiers, t)
		}
	}
	return l
}

// Get returns the first hit, backfilling faster tiers.
func (l *Layered) Get(ctx context.Context, key string) (*Entry, bool, error) {
	for i, t := range l.tiers {
		e, ok, err := t.Get(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		for _, faster := range l.tiers[:i] {
			if err := faster.Put(ctx, key, e); err != nil {
				return nil, false, err
			}
		}
		return e, true, nil
	}
	return nil, false, nil
}

// Put writes e to every tier.
func (l *Layered) Put(ctx context.Context, key string, e *Entry) error {
	for _, t := range l.tiers {
		if err := t.Put(ctx, key, e); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key from every tier and reports all failures.
func (l *Layered) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, t := range l.tiers {
		if err := t.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every tier.
func (l *Layered) Close() error {
	var errs []error
	for _, t := range l.tiers {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Store = (*Layered)(nil)
