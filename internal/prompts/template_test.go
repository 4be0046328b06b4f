package prompts

import (
	"testing"
)

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables("Hello {{.Name}}, you have {{ .Count }} items from {{.Name}}")
	if len(vars) != 2 {
		t.Fatalf("ExtractVariables() = %v, want 2 unique vars", vars)
	}
	if vars[0] != "Count" || vars[1] != "Name" {
		t.Errorf("ExtractVariables() = %v, want sorted [Count Name]", vars)
	}
}

func TestHashText_StableAndDistinct(t *testing.T) {
	a := HashText("prompt text")
	b := HashText("prompt text")
	c := HashText("other text")
	if a != b {
		t.Error("HashText should be stable for identical input")
	}
	if a == c {
		t.Error("HashText should differ for different input")
	}
}

func TestRegistry_RegisterDerivesHashAndVariables(t *testing.T) {
	Register(EmbeddedPrompt{
		Key:  "test.derive",
		Text: "Process {{.Input}} carefully",
	})

	p, err := Get("test.derive")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Hash != HashText(p.Text) {
		t.Errorf("Hash = %s, want derived from text", p.Hash)
	}
	if len(p.Variables) != 1 || p.Variables[0] != "Input" {
		t.Errorf("Variables = %v, want [Input]", p.Variables)
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	Register(EmbeddedPrompt{Key: "test.zz", Text: "z"})
	Register(EmbeddedPrompt{Key: "test.aa", Text: "a"})

	all := All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Key > all[i].Key {
			t.Fatalf("All() not sorted: %s before %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	if _, err := Get("test.nonexistent"); err == nil {
		t.Error("expected error for unknown prompt key")
	}
}
