package rules_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/noshow/internal/rules"
)

var base = []rules.Rule{
	{Cause: rules.DefaultCause, Reason: "Primeiro", Template: "Um 0"},
	{Cause: rules.DefaultCause, Reason: "Segundo", Template: "Dois 0"},
	{Cause: "Outra causa", Reason: "Terceiro", Template: "Três 0"},
}

func TestBuild(t *testing.T) {
	reg, err := rules.Build(base, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if reg.Len() != 3 {
		t.Errorf("Len = %d, want 3", reg.Len())
	}

	got := reg.Rules()
	for i, r := range got {
		if r != base[i] {
			t.Errorf("Rules()[%d] = %+v, want %+v", i, r, base[i])
		}
	}
}

func TestBuildOverride(t *testing.T) {
	extra := []rules.Rule{
		{Cause: "  agendamento CANCELADO ", Reason: "primeiro.", Template: "Novo 0"},
		{Cause: rules.DefaultCause, Reason: "Quarto", Template: "Quatro 0"},
	}

	reg, err := rules.Build(base, extra)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if reg.Len() != 4 {
		t.Fatalf("Len = %d, want 4", reg.Len())
	}

	want := []string{"Novo 0", "Dois 0", "Três 0", "Quatro 0"}
	for i, r := range reg.Rules() {
		if r.Template != want[i] {
			t.Errorf("Rules()[%d].Template = %q, want %q", i, r.Template, want[i])
		}
	}

	cr, ok := reg.Lookup(rules.DefaultCause, "Primeiro")
	if !ok {
		t.Fatal("Lookup(Primeiro) not found")
	}
	if !cr.Matcher.Match("Novo valor") {
		t.Error("override matcher does not accept its own template")
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name  string
		base  []rules.Rule
		extra []rules.Rule
	}{
		{"base missing cause", []rules.Rule{{Reason: "r", Template: "t"}}, nil},
		{"base missing reason", []rules.Rule{{Cause: "c", Template: "t"}}, nil},
		{"extra missing template", nil, []rules.Rule{{Cause: "c", Reason: "r", Template: "  "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := rules.Build(tt.base, tt.extra)
			if !errors.Is(err, rules.ErrInvalidRule) {
				t.Errorf("err = %v, want ErrInvalidRule", err)
			}
			if reg != nil {
				t.Error("expected nil registry on error")
			}
		})
	}
}

func TestLookupCanonical(t *testing.T) {
	reg, err := rules.BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog: %v", err)
	}

	tests := []struct {
		cause  string
		reason string
		want   bool
	}{
		{" AGENDAMENTO cancelado ", "no-show TÉCNICO.", true},
		{"Agendamento cancelado", "Atendimento Improdutivo - Ponto Fixo", true},
		{"agendamento cancelado.", "Erro de Agendamento — Endereco incorreto", true},
		{"Agendamento cancelado.", "Motivo inexistente", false},
		{"Outra causa", "No-show Técnico", false},
	}

	for _, tt := range tests {
		_, ok := reg.Lookup(tt.cause, tt.reason)
		if ok != tt.want {
			t.Errorf("Lookup(%q, %q) ok = %v, want %v", tt.cause, tt.reason, ok, tt.want)
		}
	}

	var nilReg *rules.Registry
	if _, ok := nilReg.Lookup(rules.DefaultCause, "No-show Técnico"); ok {
		t.Error("nil registry Lookup returned ok")
	}
}

func TestUnder(t *testing.T) {
	reg, err := rules.Build(base, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var reasons []string
	for cr := range reg.Under("agendamento cancelado") {
		reasons = append(reasons, cr.Reason)
	}

	if len(reasons) != 2 || reasons[0] != "Primeiro" || reasons[1] != "Segundo" {
		t.Errorf("Under = %q, want [Primeiro Segundo]", reasons)
	}

	count := 0
	for range reg.Under("nenhuma") {
		count++
	}
	if count != 0 {
		t.Errorf("Under(nenhuma) yielded %d rules, want 0", count)
	}
}

func TestMerge(t *testing.T) {
	reg, err := rules.Build(base, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	block := "Agendamento cancelado.;Novo motivo;Texto 0\nlinha sem campos\nAgendamento cancelado.; ;x"

	next, added, errs := reg.Merge(block)

	if reg.Len() != 3 {
		t.Errorf("receiver Len = %d, want 3", reg.Len())
	}
	if next.Len() != 4 {
		t.Errorf("merged Len = %d, want 4", next.Len())
	}
	if len(added) != 1 || added[0].Reason != "Novo motivo" {
		t.Errorf("added = %+v, want one rule with reason Novo motivo", added)
	}
	if len(errs) != 2 || errs[0].Line != 2 || errs[1].Line != 3 {
		t.Errorf("errs = %+v, want lines 2 and 3", errs)
	}
	if _, ok := next.Lookup(rules.DefaultCause, "novo motivo"); !ok {
		t.Error("merged registry missing new rule")
	}
	if _, ok := reg.Lookup(rules.DefaultCause, "novo motivo"); ok {
		t.Error("receiver registry was modified")
	}
}

func TestMergeNothingValid(t *testing.T) {
	reg, err := rules.Build(base, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	next, added, errs := reg.Merge("a;b")
	if next != reg {
		t.Error("expected receiver returned when nothing was added")
	}
	if len(added) != 0 || len(errs) != 1 {
		t.Errorf("added = %d, errs = %d, want 0 and 1", len(added), len(errs))
	}
}

func TestActiveSwap(t *testing.T) {
	first, _ := rules.Build(base, nil)
	second, _ := rules.Build(base[:1], nil)

	active := rules.NewActive(first)
	if active.Load() != first {
		t.Fatal("Load did not return initial registry")
	}

	if prev := active.Swap(second); prev != first {
		t.Error("Swap did not return previous registry")
	}
	if active.Load() != second {
		t.Error("Load did not return swapped registry")
	}
}
