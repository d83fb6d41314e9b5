package cv

import (
	"context"
	"fmt"

	"cv-go/internal/model"
)

// SingletonEntity is satisfied by pointers to the one-per-language payload types.
type SingletonEntity[T any] interface {
	*T
	Base() *model.SingletonBase
}

// SingletonRepository stores a kind that has exactly one record per language.
// Saves replace the whole record.
type SingletonRepository[T any, P SingletonEntity[T]] struct {
	store  Store
	kind   model.Kind
	clock  Clock
	logger Logger
}

type (
	PersonalRepository  = SingletonRepository[model.Personal, *model.Personal]
	LinksRepository     = SingletonRepository[model.Links, *model.Links]
	FooterRepository    = SingletonRepository[model.Footer, *model.Footer]
	FreelanceRepository = SingletonRepository[model.Freelance, *model.Freelance]
	SettingsRepository  = SingletonRepository[model.Settings, *model.Settings]
)

func newSingletonRepository[T any, P SingletonEntity[T]](store Store, kind model.Kind, clock Clock, logger Logger) *SingletonRepository[T, P] {
	return &SingletonRepository[T, P]{store: store, kind: kind, clock: clock, logger: logger}
}

// Kind returns the kind this repository stores.
func (r *SingletonRepository[T, P]) Kind() model.Kind { return r.kind }

// Get returns the record for lang, or nil if it was never saved.
func (r *SingletonRepository[T, P]) Get(ctx context.Context, lang model.LanguageID) (*T, error) {
	key := SingletonKey(r.kind, lang)
	rec, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if rec == nil {
		return nil, nil
	}
	return decodeBody[T](rec)
}

// Save replaces the record for lang with value. The original creation time
// is kept when a record already exists.
func (r *SingletonRepository[T, P]) Save(ctx context.Context, lang model.LanguageID, value T) error {
	if err := validate(&value); err != nil {
		return fmt.Errorf("saving %s: %w", r.kind, err)
	}

	key := SingletonKey(r.kind, lang)
	existing, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	now := r.clock.Now().UnixMilli()
	created := now
	if existing != nil {
		created = existing.CreatedAt
	}

	p := P(&value)
	*p.Base() = model.SingletonBase{
		Meta:       model.Meta{Key: key, CreatedAt: created, UpdatedAt: now},
		LanguageID: lang,
	}

	rec, err := newRecord(&p.Base().Meta, p)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	r.logger.Debug("section saved", "kind", r.kind, "lang", lang)
	return nil
}
