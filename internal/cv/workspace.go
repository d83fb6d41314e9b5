package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"cv-go/internal/model"
)

// recordSchema is what every element of an import payload must satisfy.
const recordSchema = `{
  "type": "object",
  "required": ["key"],
  "properties": {
    "key":       {"type": "string", "minLength": 1},
    "type":      {"type": ["string", "null"]},
    "createdAt": {"type": "number"},
    "updatedAt": {"type": "number"}
  }
}`

var loadRecordSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
})

// ImportResult reports what an import did. Malformed means the payload was
// not a JSON array and nothing was written.
type ImportResult struct {
	Imported  int
	Skipped   int
	Malformed bool
}

// Workspace operates on the record table as a whole.
type Workspace struct {
	store  Store
	logger Logger
}

func NewWorkspace(store Store, logger Logger) *Workspace {
	return &Workspace{store: store, logger: logger}
}

// IsEmpty reports whether the workspace holds any CV data. Settings records
// alone do not count.
func (w *Workspace) IsEmpty(ctx context.Context) (bool, error) {
	keys, err := w.store.GetAllKeys(ctx)
	if err != nil {
		return false, fmt.Errorf("checking workspace: %w", err)
	}
	for _, k := range keys {
		if !isSettingsKey(k) {
			return false, nil
		}
	}
	return true, nil
}

func isSettingsKey(key string) bool {
	s := string(model.KindSettings)
	return key == s || strings.HasPrefix(key, s+"_")
}

// Export returns every record body as one JSON array, ordered by key.
func (w *Workspace) Export(ctx context.Context) ([]byte, error) {
	recs, err := w.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	bodies := make([]json.RawMessage, len(recs))
	for i, rec := range recs {
		bodies[i] = rec.Body
	}
	out, err := json.Marshal(bodies)
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}
	w.logger.Info("workspace exported", "records", len(recs))
	return out, nil
}

// Import replaces the whole table with the records in payload. The payload
// may be a JSON array or a JSON string containing one. Elements that are not
// records of a known kind stored under their own key are skipped. Anything else is reported as Malformed without
// touching the table; storage failures are the only errors.
func (w *Workspace) Import(ctx context.Context, payload []byte) (ImportResult, error) {
	var result ImportResult

	elems, ok := parseImportPayload(payload)
	if !ok {
		w.logger.Warn("import payload is not an array; nothing written")
		result.Malformed = true
		return result, nil
	}

	schema, err := loadRecordSchema()
	if err != nil {
		return result, fmt.Errorf("loading record schema: %w", err)
	}

	recs := make([]*Record, 0, len(elems))
	for i, elem := range elems {
		rec, err := importRecord(schema, elem)
		if err != nil {
			w.logger.Debug("skipping import element", "index", i, "error", err)
			result.Skipped++
			continue
		}
		recs = append(recs, rec)
	}

	if err := w.store.Replace(ctx, recs); err != nil {
		return ImportResult{}, fmt.Errorf("importing: %w", err)
	}
	result.Imported = len(recs)
	w.logger.Info("workspace imported", "records", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// parseImportPayload unwraps up to one level of string encoding and returns
// the array elements.
func parseImportPayload(payload []byte) ([]json.RawMessage, bool) {
	payload = bytes.TrimSpace(payload)
	if len(payload) > 0 && payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, false
		}
		payload = bytes.TrimSpace([]byte(inner))
	}
	if len(payload) == 0 || payload[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func importRecord(schema *gojsonschema.Schema, elem json.RawMessage) (*Record, error) {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(elem))
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		msgs := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			msgs[i] = e.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedImport, strings.Join(msgs, "; "))
	}

	var head struct {
		Key       string  `json:"key"`
		Type      *string `json:"type"`
		CreatedAt float64 `json:"createdAt"`
		UpdatedAt float64 `json:"updatedAt"`
	}
	if err := json.Unmarshal(elem, &head); err != nil {
		return nil, err
	}
	rec := &Record{
		Key:       head.Key,
		Body:      bytes.Clone(elem),
		CreatedAt: int64(head.CreatedAt),
		UpdatedAt: int64(head.UpdatedAt),
	}
	if head.Type != nil {
		rec.Type = *head.Type
	}
	if err := checkImported(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	return rec, nil
}

// checkImported decodes rec as the kind its type tag or key names and checks
// that the key is the one that kind would derive. Records no repository
// could read back are rejected.
func checkImported(rec *Record) error {
	switch model.Kind(rec.Type) {
	case model.KindExperience:
		return checkListRecord[model.Experience, *model.Experience](rec, model.KindExperience)
	case model.KindEducation:
		return checkListRecord[model.Education, *model.Education](rec, model.KindEducation)
	case model.KindCourse:
		return checkListRecord[model.Course, *model.Course](rec, model.KindCourse)
	case model.KindSkill:
		return checkListRecord[model.Skill, *model.Skill](rec, model.KindSkill)
	case model.KindTemplate:
		t, err := decodeTagged[model.Template](rec, model.KindTemplate)
		if err != nil {
			return err
		}
		return checkKey(rec, t.ID, templateKey(t.ID))
	case model.KindApplication:
		a, err := decodeTagged[model.Application](rec, model.KindApplication)
		if err != nil {
			return err
		}
		return checkKey(rec, a.ID, applicationKey(a.ID))
	case "":
		return checkUntagged(rec)
	default:
		return fmt.Errorf("record %s has unknown type %q", rec.Key, rec.Type)
	}
}

func checkUntagged(rec *Record) error {
	if strings.HasPrefix(rec.Key, dismissalKeyPrefix) {
		d, err := decodeBody[model.Dismissals](rec)
		if err != nil {
			return err
		}
		if !slices.Contains(model.ListKinds, d.Kind) || d.LanguageID.IsCanonical() {
			return fmt.Errorf("record %s is not a dismissal set", rec.Key)
		}
		return checkKey(rec, "-", DismissalKey(d.Kind, d.LanguageID))
	}

	kind, _, _ := strings.Cut(rec.Key, "_")
	switch model.Kind(kind) {
	case model.KindPersonal:
		return checkSingletonRecord[model.Personal, *model.Personal](rec, model.KindPersonal)
	case model.KindLinks:
		return checkSingletonRecord[model.Links, *model.Links](rec, model.KindLinks)
	case model.KindFooter:
		return checkSingletonRecord[model.Footer, *model.Footer](rec, model.KindFooter)
	case model.KindFreelance:
		return checkSingletonRecord[model.Freelance, *model.Freelance](rec, model.KindFreelance)
	case model.KindSettings:
		return checkSingletonRecord[model.Settings, *model.Settings](rec, model.KindSettings)
	default:
		return fmt.Errorf("record %s has no type and no known key", rec.Key)
	}
}

func checkListRecord[T any, P ListEntity[T]](rec *Record, kind model.Kind) error {
	v, err := decodeTagged[T](rec, kind)
	if err != nil {
		return err
	}
	return checkKey(rec, "-", ListKey(kind, P(v).Item().ID))
}

func checkSingletonRecord[T any, P SingletonEntity[T]](rec *Record, kind model.Kind) error {
	v, err := decodeBody[T](rec)
	if err != nil {
		return err
	}
	return checkKey(rec, "-", SingletonKey(kind, P(v).Base().LanguageID))
}

// checkKey fails when id is empty or rec is not stored under want.
func checkKey(rec *Record, id, want string) error {
	if id == "" {
		return fmt.Errorf("record %s has no id", rec.Key)
	}
	if rec.Key != want {
		return fmt.Errorf("record key %s does not match its content (%s)", rec.Key, want)
	}
	return nil
}
