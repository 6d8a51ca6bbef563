package formcheck

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() *IssueDraft {
	return &IssueDraft{
		Type:        "POTHOLE",
		Description: "A large pothole in the road that needs repair",
		Location:    &DraftLocation{Latitude: 51.5074, Longitude: -0.1278},
	}
}

func TestValidateIssueFormAcceptsCompleteDraft(t *testing.T) {
	result := ValidateIssueForm(validDraft())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Violations)
}

func TestValidateIssueFormNilDraft(t *testing.T) {
	result := ValidateIssueForm(nil)

	require.False(t, result.IsValid)
	if diff := cmp.Diff(FieldErrors{FieldForm: MsgFormRequired}, result.Errors); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
	assert.Equal(t, []Kind{KindMissingForm}, result.Kinds())
}

func TestValidateIssueFormCases(t *testing.T) {
	tests := []struct {
		name  string
		draft *IssueDraft
		want  FieldErrors
	}{
		{
			name:  "empty draft",
			draft: &IssueDraft{},
			want: FieldErrors{
				FieldType:        MsgTypeRequired,
				FieldDescription: MsgDescriptionRequired,
				FieldLocation:    MsgLocationRequired,
			},
		},
		{
			name:  "short description only",
			draft: &IssueDraft{Description: "Too short"},
			want: FieldErrors{
				FieldType:        MsgTypeRequired,
				FieldDescription: MsgDescriptionTooShort,
				FieldLocation:    MsgLocationRequired,
			},
		},
		{
			name: "coordinates out of range",
			draft: &IssueDraft{
				Type:        "POTHOLE",
				Description: "Valid description text here",
				Location:    &DraftLocation{Latitude: 91.0, Longitude: 181.0},
			},
			want: FieldErrors{
				FieldLocation: map[string]string{
					FieldLatitude:  MsgInvalidLatitude,
					FieldLongitude: MsgInvalidLongitude,
				},
			},
		},
		{
			name: "only longitude wrong",
			draft: &IssueDraft{
				Type:        "GRAFFITI",
				Description: "Tags sprayed on the bus shelter",
				Location:    &DraftLocation{Latitude: 50.7, Longitude: "west"},
			},
			want: FieldErrors{
				FieldLocation: map[string]string{FieldLongitude: MsgInvalidLongitude},
			},
		},
		{
			name: "location without sub-fields",
			draft: &IssueDraft{
				Type:        "FLY_TIPPING",
				Description: "Mattress dumped in the lane",
				Location:    &DraftLocation{},
			},
			want: FieldErrors{
				FieldLocation: map[string]string{
					FieldLatitude:  MsgInvalidLatitude,
					FieldLongitude: MsgInvalidLongitude,
				},
			},
		},
		{
			name: "exactly ten characters",
			draft: &IssueDraft{
				Type:        "POTHOLE",
				Description: "0123456789",
				Location:    &DraftLocation{Latitude: 0.0, Longitude: 0.0},
			},
			want: FieldErrors{},
		},
		{
			name: "multibyte description counts characters",
			draft: &IssueDraft{
				Type:        "POTHOLE",
				Description: "ééééééééé",
				Location:    &DraftLocation{Latitude: 0.0, Longitude: 0.0},
			},
			want: FieldErrors{FieldDescription: MsgDescriptionTooShort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateIssueForm(tt.draft)
			if diff := cmp.Diff(tt.want, result.Errors); diff != "" {
				t.Fatalf("unexpected errors (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.want) == 0, result.IsValid)
		})
	}
}

func TestValidateIssueFormViolationKinds(t *testing.T) {
	result := ValidateIssueForm(&IssueDraft{
		Description: "short",
		Location:    &DraftLocation{Latitude: "51", Longitude: 200.0},
	})

	got := map[string]Kind{}
	for _, v := range result.Violations {
		got[v.Field] = v.Kind
	}
	want := map[string]Kind{
		"type":               KindMissingField,
		"description":        KindTooShort,
		"location.latitude":  KindInvalidType,
		"location.longitude": KindOutOfRange,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected kinds (-want +got):\n%s", diff)
	}
}

func TestDecodeDraft(t *testing.T) {
	draft, err := DecodeDraft([]byte(`{"type":"POTHOLE","description":"A large pothole in the road","location":{"latitude":51.5074,"longitude":-0.1278}}`))
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.True(t, ValidateIssueForm(draft).IsValid)

	draft, err = DecodeDraft([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, draft)
	assert.False(t, ValidateIssueForm(draft).IsValid)

	_, err = DecodeDraft([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestDecodeDraftWrongTypesDegrade(t *testing.T) {
	draft, err := DecodeDraft([]byte(`{"type":7,"description":["x"],"location":{"latitude":"51.5","longitude":null}}`))
	require.NoError(t, err)

	result := ValidateIssueForm(draft)
	assert.False(t, result.IsValid)

	msg, ok := result.Errors.Message(FieldType)
	assert.True(t, ok)
	assert.Equal(t, MsgTypeRequired, msg)
	assert.Equal(t, map[string]string{
		FieldLatitude:  MsgInvalidLatitude,
		FieldLongitude: MsgInvalidLongitude,
	}, result.Errors.Nested(FieldLocation))
	assert.Equal(t, []string{FieldDescription, FieldLocation, FieldType}, result.Errors.Fields())
}

func TestDecodeDraftNonObject(t *testing.T) {
	draft, err := DecodeDraft([]byte(`"POTHOLE"`))
	require.NoError(t, err)
	assert.Nil(t, draft)

	draft, err = DecodeDraft([]byte(`{"type":"POTHOLE","location":"Exeter"}`))
	require.NoError(t, err)
	result := ValidateIssueForm(draft)
	msg, _ := result.Errors.Message(FieldLocation)
	assert.Equal(t, MsgLocationRequired, msg)
}

func TestDraftFromMapNil(t *testing.T) {
	assert.Nil(t, DraftFromMap(nil))
}

func TestDraftLocationCoordinates(t *testing.T) {
	lat, lng, ok := (&DraftLocation{Latitude: json.Number("50.7184"), Longitude: -3.5339}).Coordinates()
	if !ok || lat != 50.7184 || lng != -3.5339 {
		t.Fatalf("Coordinates() = %v, %v, %v", lat, lng, ok)
	}

	if _, _, ok := (&DraftLocation{Latitude: 91, Longitude: 0}).Coordinates(); ok {
		t.Fatal("out of range latitude accepted")
	}
	if _, _, ok := (*DraftLocation)(nil).Coordinates(); ok {
		t.Fatal("nil location accepted")
	}
}
