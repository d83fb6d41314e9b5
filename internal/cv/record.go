package cv

import (
	"encoding/json"
	"fmt"
	"strconv"

	"cv-go/internal/model"
)

// Record is one row of the record table. Body is the full JSON document;
// Key, Type and the timestamps are lifted out of it for indexing.
type Record struct {
	Key       string
	Type      string // empty for singleton and dismissal records
	Body      json.RawMessage
	CreatedAt int64
	UpdatedAt int64
}

const dismissalKeyPrefix = "hints_"

// SingletonKey returns the key of a one-per-language record.
func SingletonKey(kind model.Kind, lang model.LanguageID) string {
	if lang.IsCanonical() {
		return string(kind)
	}
	return string(kind) + "_" + string(lang)
}

// ListKey returns the key of a list entity.
func ListKey(kind model.Kind, id int64) string {
	return string(kind) + "_" + strconv.FormatInt(id, 10)
}

// DismissalKey returns the key of the dismissal set for (kind, lang).
func DismissalKey(kind model.Kind, lang model.LanguageID) string {
	return dismissalPrefix(kind) + string(lang)
}

func dismissalPrefix(kind model.Kind) string {
	return dismissalKeyPrefix + string(kind) + "_"
}

func templateKey(id string) string    { return string(model.KindTemplate) + "_" + id }
func applicationKey(id string) string { return string(model.KindApplication) + "_" + id }

// newRecord marshals v into a Record using the storage fields in meta.
func newRecord(meta *model.Meta, v any) (*Record, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", meta.Key, err)
	}
	return &Record{
		Key:       meta.Key,
		Type:      string(meta.Type),
		Body:      body,
		CreatedAt: meta.CreatedAt,
		UpdatedAt: meta.UpdatedAt,
	}, nil
}

// decodeTagged narrows rec to T after checking its type tag.
func decodeTagged[T any](rec *Record, want model.Kind) (*T, error) {
	if rec.Type != string(want) {
		return nil, fmt.Errorf("record %s has type %q, want %q", rec.Key, rec.Type, want)
	}
	return decodeBody[T](rec)
}

// decodeBody decodes an untagged record (singletons, dismissal sets).
func decodeBody[T any](rec *Record) (*T, error) {
	var v T
	if err := json.Unmarshal(rec.Body, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rec.Key, err)
	}
	return &v, nil
}
