// Package importer writes reviewer-accepted fields of a parsed activity into
// the persistence gateway. It adds and replaces but never deletes, and it
// never writes a field the reviewer did not accept.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	activitymodels "aims/internal/activity/models"
	"aims/internal/activity/store"
	"aims/internal/iati/diff"
	"aims/internal/iati/models"
	dErrors "aims/pkg/domain-errors"
	"aims/pkg/platform/sentinel"
)

// Note records why a field or row was not written.
type Note struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Manifest is the account of one merge run. Written lists the field ids that
// reached storage. Skipped lists accepted fields and rows that were not
// written, with reasons. Failed lists fields whose write hit a storage error;
// a failure aborts the rest of the run, so at most one entry carries the
// error and the remainder are skipped as not attempted.
type Manifest struct {
	ActivityID   uuid.UUID `json:"activity_id"`
	Written      []string  `json:"written"`
	Skipped      []Note    `json:"skipped,omitempty"`
	Failed       []Note    `json:"failed,omitempty"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	Deduplicated int       `json:"deduplicated"`
}

// Merge applies the accepted subset of the descriptors to the stored
// activity. It returns the manifest together with any storage error that
// aborted the run; the manifest is valid in both cases.
func Merge(ctx context.Context, gw store.Gateway, a *models.ParsedActivity, descriptors []diff.FieldDescriptor, accepted []string, activityID uuid.UUID) (*Manifest, error) {
	manifest := &Manifest{ActivityID: activityID}

	byID := make(map[string]diff.FieldDescriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	acceptedSet := make(map[string]bool, len(accepted))
	for _, id := range accepted {
		acceptedSet[id] = true
		if _, offered := byID[id]; !offered {
			manifest.Skipped = append(manifest.Skipped, Note{Field: id, Reason: "not provided by this document"})
		}
	}

	snap, err := gw.ReadSnapshot(ctx, activityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return manifest, dErrors.Newf(dErrors.CodeNotFound, "activity %s not found", activityID)
		}
		return manifest, dErrors.Wrap(err, dErrors.CodeUnavailable, "read activity snapshot")
	}

	aborted := false
	for _, d := range descriptors {
		if !acceptedSet[d.ID] {
			continue
		}
		if aborted {
			manifest.Skipped = append(manifest.Skipped, Note{Field: d.ID, Reason: "not attempted after storage failure"})
			continue
		}
		if !d.Selectable() {
			manifest.Skipped = append(manifest.Skipped, Note{Field: d.ID, Reason: "field has validation errors"})
			continue
		}
		if d.State == diff.StateUnchanged {
			manifest.Skipped = append(manifest.Skipped, Note{Field: d.ID, Reason: "already up to date"})
			continue
		}

		var writeErr error
		if d.Kind == diff.KindScalar {
			writeErr = gw.UpsertScalar(ctx, activityID, d.ID, d.Incoming)
		} else {
			writeErr = mergeCollection(ctx, gw, a, snap, d.ID, activityID, manifest)
		}
		if writeErr != nil {
			manifest.Failed = append(manifest.Failed, Note{Field: d.ID, Reason: writeErr.Error()})
			aborted = true
			err = dErrors.Wrap(writeErr, dErrors.CodeUnavailable, "write "+d.ID)
			continue
		}
		manifest.Written = append(manifest.Written, d.ID)
		if d.State == diff.StateNew {
			manifest.Created++
		} else {
			manifest.Updated++
		}
	}
	if aborted {
		return manifest, err
	}
	return manifest, nil
}

func mergeCollection(ctx context.Context, gw store.Gateway, a *models.ParsedActivity, snap *activitymodels.Snapshot, fieldID string, activityID uuid.UUID, manifest *Manifest) error {
	items, _, err := diff.Items(fieldID, a)
	if err != nil {
		return err
	}

	switch fieldID {
	case models.FieldParticipatingOrgs:
		items, err = resolveOrgRefs(ctx, gw, items, manifest)
	case models.FieldRelatedActivities:
		items, err = resolveActivityRefs(ctx, gw, items, manifest)
	case models.FieldContacts:
		items, err = dedupContacts(items, snap.Collections[fieldID], manifest)
	}
	if err != nil {
		return err
	}

	return gw.ReplaceCollection(ctx, activityID, fieldID, items)
}

// resolveOrgRefs drops participating-org rows whose ref is not a known
// organisation. Rows without a ref are kept; a name-only organisation is
// legal IATI and resolvable later.
func resolveOrgRefs(ctx context.Context, gw store.Gateway, items []activitymodels.CollectionItem, manifest *Manifest) ([]activitymodels.CollectionItem, error) {
	kept := items[:0]
	for _, item := range items {
		var org models.ParticipatingOrg
		if err := json.Unmarshal(item.Payload, &org); err != nil {
			return nil, fmt.Errorf("decode participating-org %q: %w", item.NaturalKey, err)
		}
		if org.Ref != "" {
			if _, err := gw.FindOrganizationByRef(ctx, org.Ref); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					manifest.Skipped = append(manifest.Skipped, Note{
						Field:  models.FieldParticipatingOrgs,
						Reason: fmt.Sprintf("row %q: organisation ref %q is not known", item.NaturalKey, org.Ref),
					})
					continue
				}
				return nil, err
			}
		}
		kept = append(kept, item)
	}
	return kept, nil
}

// resolveActivityRefs drops related-activity rows pointing at IATI
// identifiers this system has never seen.
func resolveActivityRefs(ctx context.Context, gw store.Gateway, items []activitymodels.CollectionItem, manifest *Manifest) ([]activitymodels.CollectionItem, error) {
	kept := items[:0]
	for _, item := range items {
		var rel models.RelatedActivity
		if err := json.Unmarshal(item.Payload, &rel); err != nil {
			return nil, fmt.Errorf("decode related-activity %q: %w", item.NaturalKey, err)
		}
		if _, err := gw.FindActivityByIATIID(ctx, rel.Ref); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				manifest.Skipped = append(manifest.Skipped, Note{
					Field:  models.FieldRelatedActivities,
					Reason: fmt.Sprintf("row %q: activity %q is not known", item.NaturalKey, rel.Ref),
				})
				continue
			}
			return nil, err
		}
		kept = append(kept, item)
	}
	return kept, nil
}

// dedupContacts folds incoming contacts into the stored ones by identity key.
// When keys collide the non-empty incoming fields win and the stored values
// fill the gaps, so a re-import never loses detail.
func dedupContacts(items []activitymodels.CollectionItem, existing []activitymodels.CollectionItem, manifest *Manifest) ([]activitymodels.CollectionItem, error) {
	stored := make(map[string]models.Contact, len(existing))
	for _, item := range existing {
		var c models.Contact
		if err := json.Unmarshal(item.Payload, &c); err != nil {
			return nil, fmt.Errorf("decode stored contact %q: %w", item.NaturalKey, err)
		}
		if key := diff.ContactKey(c); key != "" {
			stored[key] = c
		}
	}

	out := make([]activitymodels.CollectionItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		var c models.Contact
		if err := json.Unmarshal(item.Payload, &c); err != nil {
			return nil, fmt.Errorf("decode contact %q: %w", item.NaturalKey, err)
		}
		key := diff.ContactKey(c)
		if key != "" {
			if prior, ok := stored[key]; ok {
				c = unionContact(c, prior)
				manifest.Deduplicated++
			}
			if at, ok := index[key]; ok {
				var earlier models.Contact
				if err := json.Unmarshal(out[at].Payload, &earlier); err != nil {
					return nil, fmt.Errorf("decode contact %q: %w", out[at].NaturalKey, err)
				}
				merged := unionContact(c, earlier)
				payload, err := json.Marshal(merged)
				if err != nil {
					return nil, fmt.Errorf("encode contact %q: %w", key, err)
				}
				out[at].Payload = payload
				manifest.Deduplicated++
				continue
			}
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode contact %q: %w", item.NaturalKey, err)
		}
		out = append(out, activitymodels.CollectionItem{NaturalKey: item.NaturalKey, Payload: payload})
		if key != "" {
			index[key] = len(out) - 1
		}
	}
	return out, nil
}

// unionContact keeps every non-empty field of the preferred contact and fills
// the rest from the fallback.
func unionContact(preferred, fallback models.Contact) models.Contact {
	out := preferred
	if strings.TrimSpace(out.Type) == "" {
		out.Type = fallback.Type
	}
	if out.Organisation.Empty() {
		out.Organisation = fallback.Organisation
	}
	if out.Department.Empty() {
		out.Department = fallback.Department
	}
	if out.PersonName.Empty() {
		out.PersonName = fallback.PersonName
	}
	if out.JobTitle.Empty() {
		out.JobTitle = fallback.JobTitle
	}
	if strings.TrimSpace(out.Telephone) == "" {
		out.Telephone = fallback.Telephone
	}
	if strings.TrimSpace(out.Email) == "" {
		out.Email = fallback.Email
	}
	if strings.TrimSpace(out.Website) == "" {
		out.Website = fallback.Website
	}
	if out.MailingAddress.Empty() {
		out.MailingAddress = fallback.MailingAddress
	}
	return out
}
