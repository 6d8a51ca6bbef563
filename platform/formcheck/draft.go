package formcheck

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// MinDescriptionLength is the shortest accepted description, in runes.
const MinDescriptionLength = 10

// Error messages surfaced to the reporter.
const (
	MsgFormRequired        = "Form data is required"
	MsgTypeRequired        = "Issue type is required"
	MsgDescriptionRequired = "Description is required"
	MsgDescriptionTooShort = "Description must be at least 10 characters"
	MsgLocationRequired    = "Location is required"
	MsgInvalidLatitude     = "Invalid latitude"
	MsgInvalidLongitude    = "Invalid longitude"
)

// Field names used as keys in FieldErrors.
const (
	FieldForm        = "form"
	FieldType        = "type"
	FieldDescription = "description"
	FieldLocation    = "location"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
)

// IssueDraft is an unsaved report as typed by a citizen. Any field may be
// missing: an empty string or nil Location means the reporter left it out.
type IssueDraft struct {
	Type        string
	Description string
	Location    *DraftLocation
}

// DraftLocation keeps the raw decoded coordinate values so that wrongly
// typed input (a string, a bool, null) is rejected by IsValidCoordinate
// instead of being coerced.
type DraftLocation struct {
	Latitude  any
	Longitude any
}

// DecodeDraft builds a draft from a JSON document. Only syntactically
// invalid JSON is an error; wrongly typed fields become missing fields.
// A JSON null yields a nil draft.
func DecodeDraft(data []byte) (*IssueDraft, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	return DraftFromMap(fields), nil
}

// DraftFromMap converts already-decoded form data into a draft.
// A nil map yields a nil draft.
func DraftFromMap(fields map[string]any) *IssueDraft {
	if fields == nil {
		return nil
	}

	draft := &IssueDraft{
		Type:        stringField(fields, FieldType),
		Description: stringField(fields, FieldDescription),
	}

	if loc, ok := fields[FieldLocation].(map[string]any); ok {
		draft.Location = &DraftLocation{
			Latitude:  loc[FieldLatitude],
			Longitude: loc[FieldLongitude],
		}
	}
	return draft
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// ValidateIssueForm checks a draft and returns every problem found.
// The location sub-fields are checked independently of each other.
func ValidateIssueForm(draft *IssueDraft) ValidationResult {
	var b resultBuilder

	if draft == nil {
		b.add(FieldForm, KindMissingForm, MsgFormRequired)
		return b.result()
	}

	if draft.Type == "" {
		b.add(FieldType, KindMissingField, MsgTypeRequired)
	}

	switch {
	case draft.Description == "":
		b.add(FieldDescription, KindMissingField, MsgDescriptionRequired)
	case utf8.RuneCountInString(draft.Description) < MinDescriptionLength:
		b.add(FieldDescription, KindTooShort, MsgDescriptionTooShort)
	}

	if draft.Location == nil {
		b.add(FieldLocation, KindMissingComposite, MsgLocationRequired)
		return b.result()
	}

	if kind, ok := CoordinateKind(draft.Location.Latitude, AxisLatitude); !ok {
		b.addNested(FieldLocation, FieldLatitude, kind, MsgInvalidLatitude)
	}
	if kind, ok := CoordinateKind(draft.Location.Longitude, AxisLongitude); !ok {
		b.addNested(FieldLocation, FieldLongitude, kind, MsgInvalidLongitude)
	}

	return b.result()
}

// Coordinates returns the location as floats. ok is false unless both
// values pass IsValidCoordinate for their axis.
func (l *DraftLocation) Coordinates() (lat, lng float64, ok bool) {
	if l == nil || !IsValidCoordinate(l.Latitude, AxisLatitude) || !IsValidCoordinate(l.Longitude, AxisLongitude) {
		return 0, 0, false
	}
	lat, _ = toFloat(l.Latitude)
	lng, _ = toFloat(l.Longitude)
	return lat, lng, true
}
