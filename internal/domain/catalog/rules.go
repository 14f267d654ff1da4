package catalog

import "sort"

// Contact fields ride along on add requests but belong in the created
// record only when the submitter manages the restaurant.
var contactFields = map[string]struct{}{
	"contactName":  {},
	"contactPhone": {},
	"contactEmail": {},
}

const managerFlagField = "isManager"

// UnresolvedFields returns the sorted names of decisions still pending,
// skipping fields in the ignore set. An empty result means the request is
// ready to reconcile.
func UnresolvedFields(decisions []FieldDecision, ignore map[string]struct{}) []string {
	var unresolved []string
	for _, d := range decisions {
		if _, skip := ignore[d.Name]; skip {
			continue
		}
		if d.Status == FieldStatusPending {
			unresolved = append(unresolved, d.Name)
		}
	}
	sort.Strings(unresolved)
	return unresolved
}

// MergeSet keeps only approved decisions. Rejected and ignored fields are
// dropped, never written.
func MergeSet(decisions []FieldDecision, ignore map[string]struct{}) Fields {
	merge := Fields{}
	for _, d := range decisions {
		if _, skip := ignore[d.Name]; skip {
			continue
		}
		if d.Status == FieldStatusApproved {
			merge[d.Name] = d.Value
		}
	}
	return merge
}

// ApplyMerge overlays approved values onto existing record fields.
func ApplyMerge(existing Fields, merge Fields) Fields {
	out := make(Fields, len(existing)+len(merge))
	for name, v := range existing {
		out[name] = v
	}
	for name, v := range merge {
		out[name] = v
	}
	return out
}

// BuildCreationPayload derives the fields of a record created from an
// add request: bookkeeping keys are stripped, and the contact fields are
// included only when the proposed isManager flag is true. When it is not,
// they are entirely absent from the result, not blanked.
func BuildCreationPayload(payload Fields) Fields {
	isManager := false
	if v, ok := payload[managerFlagField]; ok {
		if b, isBool := v.Bools(); isBool {
			isManager = b
		}
	}

	out := make(Fields, len(payload))
	for name, v := range payload {
		if IsBookkeepingKey(name) {
			continue
		}
		if _, contact := contactFields[name]; contact && !isManager {
			continue
		}
		out[name] = v
	}
	return out
}

// LimitFacadePhotos enforces the one-facade-photo rule: the field stays a
// list, but only the first maxPhotos entries survive creation.
func LimitFacadePhotos(fields Fields, facadeField string, maxPhotos int) Fields {
	if facadeField == "" || maxPhotos <= 0 {
		return fields
	}
	v, ok := fields[facadeField]
	if !ok {
		return fields
	}
	urls := v.AssetURLs()
	if len(urls) <= maxPhotos {
		return fields
	}

	out := make(Fields, len(fields))
	for name, item := range fields {
		out[name] = item
	}
	out[facadeField] = AssetRefsValue(urls[:maxPhotos])
	return out
}
