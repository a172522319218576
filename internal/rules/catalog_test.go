package rules_test

import (
	"testing"

	"github.com/JaimeStill/noshow/internal/rules"
)

func TestCatalog(t *testing.T) {
	catalog, err := rules.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}

	if len(catalog) != 15 {
		t.Errorf("len = %d, want 15", len(catalog))
	}

	reg, err := rules.Build(catalog, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if reg.Len() != len(catalog) {
		t.Errorf("registry Len = %d, want %d (duplicate keys in catalog?)", reg.Len(), len(catalog))
	}

	for cr := range reg.All() {
		if cr.Key.Cause != "agendamento cancelado" {
			t.Errorf("rule %q has cause %q", cr.Reason, cr.Cause)
		}
		if cr.Matcher.Fallback() {
			t.Errorf("rule %q template did not compile", cr.Reason)
		}
	}
}

func TestParseCatalog(t *testing.T) {
	data := []byte(`
[[rule]]
cause = "C"
reason = "R"
template = "T 0"
`)

	got, err := rules.ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(got) != 1 || got[0] != (rules.Rule{Cause: "C", Reason: "R", Template: "T 0"}) {
		t.Errorf("got %+v", got)
	}

	if _, err := rules.ParseCatalog([]byte("[[rule]\ncause =")); err == nil {
		t.Error("expected error for malformed catalog")
	}
}
