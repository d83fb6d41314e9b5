package cv

import (
	"context"
	"fmt"

	"cv-go/internal/model"
)

// HintStore tracks, per overlay language, which canonical list entities the
// user has copied or dismissed so they are no longer suggested.
//
// Dismissal sets reference canonical identities without any foreign key;
// Purge is the manual cascade run when a canonical entity is deleted.
type HintStore struct {
	store  Store
	clock  Clock
	logger Logger
}

// PurgeResult counts the dismissal sets a purge looked at.
// Attempted counts sets that referenced the identity (or could not be read);
// Completed counts those successfully rewritten without it.
type PurgeResult struct {
	Scanned   int
	Attempted int
	Completed int
}

func NewHintStore(store Store, clock Clock, logger Logger) *HintStore {
	return &HintStore{store: store, clock: clock, logger: logger}
}

// Dismissed returns the dismissal set for (lang, kind). A set that was never
// written comes back empty, not nil.
func (h *HintStore) Dismissed(ctx context.Context, lang model.LanguageID, kind model.Kind) (*model.Dismissals, error) {
	key := DismissalKey(kind, lang)
	rec, err := h.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading dismissals %s: %w", key, err)
	}
	if rec == nil {
		return &model.Dismissals{
			Meta:       model.Meta{Key: key},
			Kind:       kind,
			LanguageID: lang,
		}, nil
	}
	return decodeBody[model.Dismissals](rec)
}

// IsDismissed reports whether canonicalID is dismissed for lang.
// Nothing is ever dismissed in the canonical language.
func (h *HintStore) IsDismissed(ctx context.Context, lang model.LanguageID, kind model.Kind, canonicalID int64) (bool, error) {
	if lang.IsCanonical() {
		return false, nil
	}
	d, err := h.Dismissed(ctx, lang, kind)
	if err != nil {
		return false, err
	}
	return d.Contains(canonicalID), nil
}

// Dismiss adds canonicalID to the dismissal set for (lang, kind), creating
// the set on first use. Dismissing twice is a no-op.
func (h *HintStore) Dismiss(ctx context.Context, lang model.LanguageID, kind model.Kind, canonicalID int64) error {
	if lang.IsCanonical() {
		return fmt.Errorf("dismissing %s %d: %w", kind, canonicalID, ErrCanonicalLanguage)
	}
	d, err := h.Dismissed(ctx, lang, kind)
	if err != nil {
		return err
	}
	if d.Contains(canonicalID) {
		return nil
	}

	now := h.clock.Now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	d.Dismissed = append(d.Dismissed, canonicalID)

	if err := h.put(ctx, d); err != nil {
		return fmt.Errorf("dismissing %s %d: %w", kind, canonicalID, err)
	}
	h.logger.Debug("hint dismissed", "kind", kind, "id", canonicalID, "lang", lang)
	return nil
}

// Pending returns the canonical identities of kind that are still
// suggested for lang, in key order.
func (h *HintStore) Pending(ctx context.Context, lang model.LanguageID, kind model.Kind) ([]int64, error) {
	if lang.IsCanonical() {
		return nil, fmt.Errorf("pending %s hints: %w", kind, ErrCanonicalLanguage)
	}
	recs, err := h.store.ListByType(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	d, err := h.Dismissed(ctx, lang, kind)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, rec := range recs {
		item, err := decodeBody[model.ListItem](rec)
		if err != nil {
			return nil, err
		}
		if item.LanguageID.IsCanonical() && !d.Contains(item.ID) {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

// Purge removes canonicalID from the dismissal sets of every language.
// Each set is rewritten independently, so a failure on one leaves the others
// intact. When no set references the identity the result is all zero and the
// error nil; any failure returns a *PartialCleanupError.
func (h *HintStore) Purge(ctx context.Context, kind model.Kind, canonicalID int64) (PurgeResult, error) {
	var result PurgeResult

	recs, err := h.store.ListByKeyPrefix(ctx, dismissalPrefix(kind))
	if err != nil {
		return result, fmt.Errorf("listing %s dismissals: %w", kind, err)
	}
	result.Scanned = len(recs)

	failures := make(map[string]error)
	now := h.clock.Now().UnixMilli()
	for _, rec := range recs {
		d, err := decodeBody[model.Dismissals](rec)
		if err != nil {
			result.Attempted++
			failures[rec.Key] = err
			continue
		}
		if !d.Contains(canonicalID) {
			continue
		}
		result.Attempted++

		kept := make([]int64, 0, len(d.Dismissed)-1)
		for _, v := range d.Dismissed {
			if v != canonicalID {
				kept = append(kept, v)
			}
		}
		d.Dismissed = kept
		d.UpdatedAt = now

		if err := h.put(ctx, d); err != nil {
			failures[rec.Key] = err
			continue
		}
		result.Completed++
	}

	if len(failures) > 0 {
		h.logger.Warn("dismissal purge incomplete", "kind", kind, "id", canonicalID,
			"attempted", result.Attempted, "completed", result.Completed)
		return result, &PartialCleanupError{
			Kind:      kind,
			ID:        canonicalID,
			Attempted: result.Attempted,
			Completed: result.Completed,
			Failures:  failures,
		}
	}

	if result.Attempted > 0 {
		h.logger.Info("dismissals purged", "kind", kind, "id", canonicalID, "sets", result.Completed)
	}
	return result, nil
}

func (h *HintStore) put(ctx context.Context, d *model.Dismissals) error {
	rec, err := newRecord(&d.Meta, d)
	if err != nil {
		return err
	}
	return h.store.Put(ctx, rec)
}
