// Package diff classifies every importable field of a parsed activity against
// what is currently stored, producing the descriptors a reviewer selects from.
package diff

import (
	"bytes"
	"sort"

	activitymodels "aims/internal/activity/models"
	"aims/internal/iati/models"
	"aims/internal/iati/validate"
)

// State describes how an incoming field relates to the stored value.
type State string

const (
	// StateNew means nothing is stored for the field yet.
	StateNew State = "new"
	// StateUnchanged means the incoming value equals the stored one.
	StateUnchanged State = "unchanged"
	// StateConflict means a different value is already stored. Conflicting
	// fields are never auto-selected; a reviewer must opt in.
	StateConflict State = "conflict"
)

// Kind distinguishes scalar fields from collection-valued ones.
type Kind string

const (
	KindScalar     Kind = "scalar"
	KindCollection Kind = "collection"
)

// FieldDescriptor is one reviewable unit of the import. Incoming and Existing
// are canonical string forms: the raw value for scalars, a JSON array of row
// payloads for collections.
type FieldDescriptor struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Kind       Kind     `json:"kind"`
	State      State    `json:"state"`
	Incoming   string   `json:"incoming"`
	Existing   string   `json:"existing,omitempty"`
	AutoSelect bool     `json:"auto_select"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Selectable reports whether the field may be written at all. Fields with
// validation errors are blocked even from manual selection.
func (d FieldDescriptor) Selectable() bool { return len(d.Errors) == 0 }

// Detect compares a parsed activity against the stored snapshot and returns
// one descriptor per field the document actually provides, in display order.
// Fields absent from the document are not offered: the importer adds and
// replaces but never deletes.
func Detect(a *models.ParsedActivity, snap *activitymodels.Snapshot, outcomes map[string]validate.Outcome) ([]FieldDescriptor, error) {
	descriptors := make([]FieldDescriptor, 0, len(models.ScalarFields)+len(models.CollectionFields))

	for _, id := range models.ScalarFields {
		incoming, present := ScalarValue(id, a)
		if !present {
			continue
		}
		d := FieldDescriptor{
			ID:       id,
			Label:    Label(id),
			Kind:     KindScalar,
			Incoming: incoming,
		}
		existing, stored := snap.Scalar(id)
		switch {
		case !stored || existing == "":
			d.State = StateNew
		case existing == incoming:
			d.State = StateUnchanged
			d.Existing = existing
		default:
			d.State = StateConflict
			d.Existing = existing
		}
		finish(&d, outcomes[id])
		descriptors = append(descriptors, d)
	}

	for _, id := range models.CollectionFields {
		items, present, err := Items(id, a)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		d := FieldDescriptor{
			ID:       id,
			Label:    Label(id),
			Kind:     KindCollection,
			Incoming: payloadArray(items),
		}
		existing := snap.Collections[id]
		switch {
		case len(existing) == 0:
			d.State = StateNew
		case sameItems(items, existing):
			d.State = StateUnchanged
			d.Existing = payloadArray(existing)
		default:
			d.State = StateConflict
			d.Existing = payloadArray(existing)
		}
		finish(&d, outcomes[id])
		descriptors = append(descriptors, d)
	}

	return descriptors, nil
}

func finish(d *FieldDescriptor, o validate.Outcome) {
	d.Errors = o.Errors
	d.Warnings = o.Warnings
	d.AutoSelect = d.State != StateConflict && o.Valid()
}

// sameItems compares two collections as multisets of (key, payload) pairs so
// row order never manufactures a conflict.
func sameItems(a, b []activitymodels.CollectionItem) bool {
	if len(a) != len(b) {
		return false
	}
	as := sortedByKey(a)
	bs := sortedByKey(b)
	for i := range as {
		if as[i].NaturalKey != bs[i].NaturalKey {
			return false
		}
		if !bytes.Equal(as[i].Payload, bs[i].Payload) {
			return false
		}
	}
	return true
}

func sortedByKey(items []activitymodels.CollectionItem) []activitymodels.CollectionItem {
	out := append([]activitymodels.CollectionItem(nil), items...)
	sort.Slice(out, func(i, j int) bool { return out[i].NaturalKey < out[j].NaturalKey })
	return out
}

func payloadArray(items []activitymodels.CollectionItem) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item.Payload)
	}
	buf.WriteByte(']')
	return buf.String()
}
