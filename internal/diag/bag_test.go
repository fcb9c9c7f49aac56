package diag

import (
	"testing"

	"lectic/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewError(HdrMissing, source.NewSpan(i, i+1), "x"))
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Len())
	}
	unlimited := NewBag(0)
	for i := 0; i < 100; i++ {
		unlimited.Add(NewError(HdrMissing, source.NewSpan(i, i), "x"))
	}
	if unlimited.Len() != 100 {
		t.Fatalf("zero limit must be unlimited, got %d", unlimited.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, LnkRelativeFileURL, source.NewSpan(10, 12), "w"))
	b.Add(NewError(HdrMissing, source.NewSpan(0, 3), "e"))
	b.Add(NewError(HdrMissing, source.NewSpan(0, 3), "e"))
	b.Add(NewError(RefUnknownKit, source.NewSpan(10, 12), "k"))
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedup, got %d", len(items))
	}
	if items[0].Code != HdrMissing || items[1].Severity != SevError || items[2].Severity != SevWarning {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !b.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportWarning(BagReporter{Bag: b}, LnkRelativeFileURL, source.NewSpan(1, 2), "rel").
		WithFix("fix it", FixEdit{Span: source.NewSpan(1, 2), NewText: "abs"})
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", b.Len())
	}
	d := b.Items()[0]
	if len(d.Fixes) != 1 || !d.Fixes[0].Preferred || d.Fixes[0].Edits[0].NewText != "abs" {
		t.Fatalf("unexpected fixes %+v", d.Fixes)
	}
	if got := HdrDuplicateName.ID(); got != "LEC1003" {
		t.Fatalf("unexpected id %s", got)
	}
	if SevError.LSP() != 1 || SevWarning.LSP() != 2 || SevInfo.LSP() != 3 {
		t.Fatalf("unexpected LSP severities")
	}
}
