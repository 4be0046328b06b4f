package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func userProfileDef(t *testing.T) *Definition {
	t.Helper()
	def, err := New("user_profile", []Field{
		{Name: "name", Kind: KindString, Required: true, Description: "The full name of the user."},
		{Name: "age", Kind: KindInteger, Required: true, Description: "The age of the user."},
		{Name: "interests", Kind: KindList, Required: true, Items: &Field{Kind: KindString}},
		{Name: "city", Kind: KindString, Description: "The city where the user resides."},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return def
}

func TestNew_RejectsDuplicateFieldNames(t *testing.T) {
	_, err := New("dupes", []Field{
		{Name: "x", Kind: KindString, Required: true},
		{Name: "x", Kind: KindInteger, Required: true},
	})
	if err == nil {
		t.Fatal("expected error for duplicate field names")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestNew_RejectsUnknownKind(t *testing.T) {
	_, err := New("bad", []Field{{Name: "x", Kind: "date", Required: true}})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestNew_RejectsListWithoutItems(t *testing.T) {
	_, err := New("bad", []Field{{Name: "xs", Kind: KindList, Required: true}})
	if err == nil {
		t.Fatal("expected error for list without items")
	}
}

func TestNew_RejectsEmptyObject(t *testing.T) {
	_, err := New("bad", []Field{{Name: "o", Kind: KindObject, Required: true}})
	if err == nil {
		t.Fatal("expected error for object without fields")
	}
}

func TestRender_Deterministic(t *testing.T) {
	def := userProfileDef(t)

	first, err := def.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := def.Render()
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("Render() not deterministic:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestRender_RequiredAndOptionalFields(t *testing.T) {
	def := userProfileDef(t)

	raw, err := def.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("rendered schema is not valid JSON: %v", err)
	}

	required, _ := doc["required"].([]any)
	want := []string{"name", "age", "interests"}
	if len(required) != len(want) {
		t.Fatalf("required = %v, want %v", required, want)
	}
	for i, name := range want {
		if required[i] != name {
			t.Errorf("required[%d] = %v, want %s (declaration order)", i, required[i], name)
		}
	}

	if doc["additionalProperties"] != false {
		t.Error("rendered schema should reject undeclared fields")
	}

	// Optional city must be nullable.
	props := doc["properties"].(map[string]any)
	city := props["city"].(map[string]any)
	types, ok := city["type"].([]any)
	if !ok || len(types) != 2 || types[1] != "null" {
		t.Errorf("optional field type = %v, want [string null]", city["type"])
	}
}

func TestValidate_Success(t *testing.T) {
	def := userProfileDef(t)

	outcome := def.Validate(json.RawMessage(`{"name":"Jane","age":28,"interests":["painting","running"]}`))
	if !outcome.OK {
		t.Fatalf("Validate() failed: %s", outcome.Detail)
	}
	if outcome.Err() != "" {
		t.Errorf("Err() = %q, want empty", outcome.Err())
	}
}

func TestValidate_TypeMismatchNamesField(t *testing.T) {
	def := userProfileDef(t)

	outcome := def.Validate(json.RawMessage(`{"name":"Jane","age":"28","interests":["painting"]}`))
	if outcome.OK {
		t.Fatal("expected type violation for string age")
	}
	if outcome.Kind != FailureViolation {
		t.Errorf("Kind = %s, want %s", outcome.Kind, FailureViolation)
	}
	if !strings.Contains(outcome.Detail, "/age") {
		t.Errorf("violation should name the age field, got: %s", outcome.Detail)
	}
}

func TestValidate_MissingRequiredIsViolationNotParseError(t *testing.T) {
	def := userProfileDef(t)

	outcome := def.Validate(json.RawMessage(`{"name":"Jane","age":28}`))
	if outcome.OK {
		t.Fatal("expected violation for missing required field")
	}
	if outcome.Kind != FailureViolation {
		t.Errorf("Kind = %s, want %s", outcome.Kind, FailureViolation)
	}
	if !strings.Contains(outcome.Detail, "interests") {
		t.Errorf("violation should name the missing field, got: %s", outcome.Detail)
	}
}

func TestValidate_RejectsUndeclaredFields(t *testing.T) {
	def := userProfileDef(t)

	outcome := def.Validate(json.RawMessage(`{"name":"Jane","age":28,"interests":[],"height":180}`))
	if outcome.OK {
		t.Fatal("expected violation for undeclared field")
	}
	if outcome.Kind != FailureViolation {
		t.Errorf("Kind = %s, want %s", outcome.Kind, FailureViolation)
	}
}

func TestValidate_OptionalNullAccepted(t *testing.T) {
	def := userProfileDef(t)

	outcome := def.Validate(json.RawMessage(`{"name":"Jane","age":28,"interests":[],"city":null}`))
	if !outcome.OK {
		t.Fatalf("explicit null for optional field should pass: %s", outcome.Detail)
	}
}

func TestValidate_ParseErrors(t *testing.T) {
	def := userProfileDef(t)

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"prose", "I could not extract the data."},
		{"truncated", `{"name":"Jane","age":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := def.Validate(json.RawMessage(tc.input))
			if outcome.OK {
				t.Fatal("expected parse error")
			}
			if outcome.Kind != FailureParse {
				t.Errorf("Kind = %s, want %s", outcome.Kind, FailureParse)
			}
		})
	}
}

func TestValidate_IdempotentAndRoundTrips(t *testing.T) {
	def := userProfileDef(t)
	candidate := json.RawMessage(`{"name":"Jane","age":28,"interests":["painting","running"]}`)

	first := def.Validate(candidate)
	second := def.Validate(candidate)
	if first.OK != second.OK || first.Kind != second.Kind || first.Detail != second.Detail {
		t.Fatalf("Validate not idempotent: %+v vs %+v", first, second)
	}

	// Re-serialize through the standard decoder and validate again.
	var doc any
	if err := json.Unmarshal(candidate, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	reserialized, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if outcome := def.Validate(reserialized); !outcome.OK {
		t.Fatalf("round-tripped value should still validate: %s", outcome.Detail)
	}
}

func TestValidate_NestedObjectAndList(t *testing.T) {
	def, err := New("invoice", []Field{
		{Name: "id", Kind: KindString, Required: true},
		{Name: "lines", Kind: KindList, Required: true, Items: &Field{
			Kind: KindObject,
			Fields: []Field{
				{Name: "sku", Kind: KindString, Required: true},
				{Name: "qty", Kind: KindInteger, Required: true},
			},
		}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	good := json.RawMessage(`{"id":"inv-1","lines":[{"sku":"a","qty":2},{"sku":"b","qty":1}]}`)
	if outcome := def.Validate(good); !outcome.OK {
		t.Fatalf("nested value should validate: %s", outcome.Detail)
	}

	bad := json.RawMessage(`{"id":"inv-1","lines":[{"sku":"a","qty":"two"}]}`)
	outcome := def.Validate(bad)
	if outcome.OK {
		t.Fatal("expected violation for nested type mismatch")
	}
	if !strings.Contains(outcome.Detail, "qty") {
		t.Errorf("violation should name the nested field, got: %s", outcome.Detail)
	}
}

func TestParse_YAMLSchema(t *testing.T) {
	data := []byte(`
name: user_profile
fields:
  - name: name
    type: string
    required: true
    description: The full name of the user.
  - name: age
    type: integer
    required: true
  - name: interests
    type: list
    required: true
    items:
      type: string
`)
	def, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.Name() != "user_profile" {
		t.Errorf("Name() = %s, want user_profile", def.Name())
	}
	fields := def.Fields()
	if len(fields) != 3 {
		t.Fatalf("len(fields) = %d, want 3", len(fields))
	}
	if fields[2].Kind != KindList || fields[2].Items == nil || fields[2].Items.Kind != KindString {
		t.Errorf("interests should be list<string>, got %+v", fields[2])
	}
}
