package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"cv-go/internal/model"
)

// ListEntity is satisfied by pointers to the list entity payload types.
type ListEntity[T any] interface {
	*T
	Item() *model.ListItem
}

// Fields is a partial update: JSON field names mapped to their new values.
type Fields map[string]any

// fields an update may never overwrite.
var protectedFields = map[string]bool{
	"id":        true,
	"key":       true,
	"type":      true,
	"createdAt": true,
}

// ListRepository stores one list entity kind. When less is set, every
// mutation is followed by a re-sort pass over the affected language.
type ListRepository[T any, P ListEntity[T]] struct {
	store  Store
	kind   model.Kind
	less   func(a, b *T) bool
	hints  *HintStore
	clock  Clock
	ids    IdentityGenerator
	logger Logger
}

type (
	ExperienceRepository = ListRepository[model.Experience, *model.Experience]
	EducationRepository  = ListRepository[model.Education, *model.Education]
	CourseRepository     = ListRepository[model.Course, *model.Course]
	SkillRepository      = ListRepository[model.Skill, *model.Skill]
)

func newListRepository[T any, P ListEntity[T]](store Store, kind model.Kind, less func(a, b *T) bool, hints *HintStore, clock Clock, ids IdentityGenerator, logger Logger) *ListRepository[T, P] {
	return &ListRepository[T, P]{
		store:  store,
		kind:   kind,
		less:   less,
		hints:  hints,
		clock:  clock,
		ids:    ids,
		logger: logger,
	}
}

// Kind returns the entity kind this repository stores.
func (r *ListRepository[T, P]) Kind() model.Kind { return r.kind }

// Add stores item under lang with a fresh identity and returns that identity.
// Any identity or storage fields already set on item are replaced.
func (r *ListRepository[T, P]) Add(ctx context.Context, lang model.LanguageID, item T) (int64, error) {
	id, err := r.freeIdentity(ctx)
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", r.kind, err)
	}
	now := r.clock.Now().UnixMilli()

	p := P(&item)
	*p.Item() = model.ListItem{
		Meta: model.Meta{
			Key:       ListKey(r.kind, id),
			Type:      r.kind,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ID:         id,
		LanguageID: lang,
	}

	if err := r.put(ctx, p); err != nil {
		return 0, fmt.Errorf("adding %s: %w", r.kind, err)
	}
	r.logger.Info("entity added", "kind", r.kind, "id", id, "lang", lang)

	if err := r.resort(ctx, lang); err != nil {
		return id, err
	}
	return id, nil
}

// List returns the kind's records for exactly lang. There is no fallback to
// the canonical language.
func (r *ListRepository[T, P]) List(ctx context.Context, lang model.LanguageID) ([]T, error) {
	recs, err := r.store.ListByType(ctx, string(r.kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.kind, err)
	}

	var items []T
	for _, rec := range recs {
		item, err := decodeTagged[T](rec, r.kind)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", r.kind, err)
		}
		if P(item).Item().LanguageID != lang {
			continue
		}
		items = append(items, *item)
	}

	if r.less != nil {
		sort.SliceStable(items, func(i, j int) bool {
			return r.less(&items[i], &items[j])
		})
	}
	return items, nil
}

// Get returns the record with the given identity.
func (r *ListRepository[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	rec, err := r.store.Get(ctx, ListKey(r.kind, id))
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", r.kind, id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s %d: %w", r.kind, id, ErrNotFound)
	}
	return decodeTagged[T](rec, r.kind)
}

// Update merges fields over the stored record. The identity, key, type and
// creation time are preserved whatever fields contains.
func (r *ListRepository[T, P]) Update(ctx context.Context, id int64, fields Fields) error {
	rec, err := r.store.Get(ctx, ListKey(r.kind, id))
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", r.kind, id, err)
	}
	if rec == nil {
		return fmt.Errorf("updating %s %d: %w", r.kind, id, ErrNotFound)
	}

	stored, err := decodeTagged[T](rec, r.kind)
	if err != nil {
		return err
	}
	oldLang := P(stored).Item().LanguageID

	merged, err := mergeFields[T](rec.Body, fields)
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", r.kind, id, err)
	}
	base := P(merged).Item()
	base.Meta = P(stored).Item().Meta
	base.ID = id
	base.UpdatedAt = r.clock.Now().UnixMilli()

	if err := r.put(ctx, P(merged)); err != nil {
		return fmt.Errorf("updating %s %d: %w", r.kind, id, err)
	}
	r.logger.Info("entity updated", "kind", r.kind, "id", id)

	if err := r.resort(ctx, base.LanguageID); err != nil {
		return err
	}
	if base.LanguageID != oldLang {
		return r.resort(ctx, oldLang)
	}
	return nil
}

// Delete removes the record and re-sorts what remains of its language.
// Deleting a canonical record also purges it from every dismissal set.
// Failures after the record itself is gone are joined into one error; a
// failed purge matches ErrPartialCleanup.
func (r *ListRepository[T, P]) Delete(ctx context.Context, id int64) error {
	item, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	lang := P(item).Item().LanguageID

	if err := r.store.Delete(ctx, ListKey(r.kind, id)); err != nil {
		return fmt.Errorf("deleting %s %d: %w", r.kind, id, err)
	}
	r.logger.Info("entity deleted", "kind", r.kind, "id", id, "lang", lang)

	// Cleanup runs even when the re-sort fails; the record is already gone.
	resortErr := r.resort(ctx, lang)

	var purgeErr error
	if lang.IsCanonical() && r.hints != nil {
		if _, err := r.hints.Purge(ctx, r.kind, id); err != nil {
			purgeErr = fmt.Errorf("deleting %s %d: %w", r.kind, id, err)
		}
	}
	return errors.Join(resortErr, purgeErr)
}

// CopyToLanguage copies a canonical record into lang and dismisses its hint
// there. It returns the identity of the copy.
func (r *ListRepository[T, P]) CopyToLanguage(ctx context.Context, canonicalID int64, lang model.LanguageID) (int64, error) {
	if lang.IsCanonical() {
		return 0, fmt.Errorf("copying %s %d: %w", r.kind, canonicalID, ErrCanonicalLanguage)
	}
	item, err := r.Get(ctx, canonicalID)
	if err != nil {
		return 0, err
	}
	if !P(item).Item().LanguageID.IsCanonical() {
		return 0, fmt.Errorf("copying %s %d: source is not canonical", r.kind, canonicalID)
	}

	id, err := r.Add(ctx, lang, *item)
	if err != nil {
		return 0, err
	}
	if err := r.hints.Dismiss(ctx, lang, r.kind, canonicalID); err != nil {
		return id, err
	}
	return id, nil
}

// Hints returns the canonical records that are still suggested for lang:
// everything in the canonical language not yet dismissed there.
func (r *ListRepository[T, P]) Hints(ctx context.Context, lang model.LanguageID) ([]T, error) {
	if lang.IsCanonical() {
		return nil, nil
	}
	canonical, err := r.List(ctx, model.Canonical)
	if err != nil {
		return nil, err
	}
	dismissed, err := r.hints.Dismissed(ctx, lang, r.kind)
	if err != nil {
		return nil, err
	}

	var pending []T
	for _, item := range canonical {
		if !dismissed.Contains(P(&item).Item().ID) {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

// resort rewrites every record of lang with its position in date order.
// The writes are sequential; an interruption can leave stale sortOrder
// values until the next mutation of the language.
func (r *ListRepository[T, P]) resort(ctx context.Context, lang model.LanguageID) error {
	if r.less == nil {
		return nil
	}
	items, err := r.List(ctx, lang)
	if err != nil {
		return fmt.Errorf("re-sorting %s: %w", r.kind, err)
	}
	for i := range items {
		p := P(&items[i])
		p.Item().SortOrder = i
		if err := r.put(ctx, p); err != nil {
			return fmt.Errorf("re-sorting %s: %w", r.kind, err)
		}
	}
	r.logger.Debug("collection re-sorted", "kind", r.kind, "lang", lang, "count", len(items))
	return nil
}

// freeIdentity draws identities until one is not already stored.
func (r *ListRepository[T, P]) freeIdentity(ctx context.Context) (int64, error) {
	for {
		id := r.ids.NextID()
		rec, err := r.store.Get(ctx, ListKey(r.kind, id))
		if err != nil {
			return 0, err
		}
		if rec == nil {
			return id, nil
		}
		r.logger.Debug("identity taken", "kind", r.kind, "id", id)
	}
}

func (r *ListRepository[T, P]) put(ctx context.Context, p P) error {
	rec, err := newRecord(&p.Item().Meta, p)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, rec)
}

// mergeFields overlays fields onto the JSON document body and decodes the
// result as T.
func mergeFields[T any](body json.RawMessage, fields Fields) (*T, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding stored record: %w", err)
	}

	for k, v := range fields {
		if protectedFields[k] {
			continue
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var v T
	if err := json.Unmarshal(merged, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &v, nil
}

func experienceNewerFirst(a, b *model.Experience) bool { return a.StartDate > b.StartDate }

func courseNewerFirst(a, b *model.Course) bool { return a.CompletionDate > b.CompletionDate }
