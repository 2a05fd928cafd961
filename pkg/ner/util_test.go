package ner

import (
	"testing"
)

func TestUnmarshalFlexible_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "valid json",
			input: `{"entities":[{"text":"Alice","type":"PERSON"}]}`,
			want:  1,
		},
		{
			name:  "double encoded",
			input: `"{\"entities\":[{\"text\":\"Alice\",\"type\":\"PERSON\"}]}"`,
			want:  1,
		},
		{
			name:  "unquoted keys",
			input: `{entities: [{text: 'Alice', type: 'PERSON'}]}`,
			want:  1,
		},
		{
			name:  "trailing comma",
			input: `{"entities":[{"text":"Alice","type":"PERSON"},]}`,
			want:  1,
		},
		{
			name:  "missing closing bracket",
			input: `{"entities":[{"text":"Alice","type":"PERSON"}`,
			want:  1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got TagResponse
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if len(got.Entities) != tc.want {
				t.Fatalf("expected %d entities, got %+v", tc.want, got.Entities)
			}
		})
	}
}

func TestUnmarshalFlexible_Unrepairable(t *testing.T) {
	var got TagResponse
	if err := UnmarshalFlexible(`42`, &got); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestTagResponse_Spans(t *testing.T) {
	response := TagResponse{Entities: []TaggedSpan{
		{Text: "Alice", Type: "PERSON"},
		{Text: "  MIT  ", Type: "ORGANIZATION"},
		{Text: "Cambridge", Type: "LOCATION"},
		{Text: "ignored", Type: "DATE"},
		{Text: "   ", Type: "PERSON"},
	}}

	spans := response.Spans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %+v", spans)
	}
	if spans[1].Text != "MIT" {
		t.Fatalf("expected trimmed text, got %q", spans[1].Text)
	}
	if spans[0].Type != EntityPerson || spans[1].Type != EntityOrganization || spans[2].Type != EntityLocation {
		t.Fatalf("unexpected types: %+v", spans)
	}
}

func TestGenerateSchema_TagResponse(t *testing.T) {
	schema := GenerateSchema(TagResponse{})
	if schema == nil {
		t.Fatal("expected a schema")
	}
	// Same shape whether value or pointer is passed.
	if GenerateSchema(&TagResponse{}) == nil {
		t.Fatal("expected a schema for pointer input")
	}
}
