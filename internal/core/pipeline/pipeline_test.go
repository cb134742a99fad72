package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"donorpipe/internal/core/colmap"
	"donorpipe/internal/core/pii"
)

type fakeSink struct {
	calls   int
	columns []string
	rows    []Record
	dest    Destination
	mode    WriteMode
	err     error
}

func (f *fakeSink) Write(_ context.Context, columns []string, rows []Record, dest Destination, mode WriteMode) (int, error) {
	f.calls++
	f.columns = columns
	f.rows = rows
	f.dest = dest
	f.mode = mode
	if f.err != nil {
		return 0, f.err
	}
	return len(rows), nil
}

func testRun() RunContext {
	return RunContext{
		Partner:   "whitestork",
		SearchKey: "subject:whatever",
		Now:       time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
	}
}

func testDest() Destination {
	return Destination{Dataset: "staging", Table: "contribution_report"}
}

const sampleCSV = "Contribution ID,Contact Name,Personal Email,Date Received\n" +
	"42,Jane Doe,jane@example.org,2024-03-15\n"

func TestRun_EndToEnd(t *testing.T) {
	sink := &fakeSink{}
	o := New(colmap.Contribution(), pii.Default(), sink)

	records, sum, err := o.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Stage != StageDelivered {
		t.Fatalf("stage = %q, want delivered", sum.Stage)
	}
	if sum.RowsProcessed != 1 || sum.RowsFailed != 0 || sum.RowsWritten != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sink.calls != 1 || sink.mode != ModeReplace || sink.dest != testDest() {
		t.Fatalf("sink call = %+v", sink)
	}

	rec := records[0]
	if rec["id"] != "42" || rec["contribution_id"] != "42" {
		t.Fatalf("id fields = %q / %q", rec["id"], rec["contribution_id"])
	}
	if rec["partner"] != "whitestork" || rec["email_name_search_key"] != "subject:whatever" {
		t.Fatalf("run metadata = %v", rec)
	}
	if rec["processed_at"] != "2024-03-15 12:30:00" {
		t.Fatalf("processed_at = %q", rec["processed_at"])
	}
	if rec["date_received"] != "03/15/2024" {
		t.Fatalf("date_received = %q", rec["date_received"])
	}

	// sensitive fields leave as digests, never raw
	if rec["email"] == "jane@example.org" || len(rec["email"]) != 64 {
		t.Fatalf("email not hashed: %q", rec["email"])
	}
	if _, ok := rec["Contact Name"]; ok {
		t.Fatalf("raw contact name in output: %v", rec)
	}
	if len(rec["first_name"]) != 64 || len(rec["last_name"]) != 64 {
		t.Fatalf("name digests wrong: %q %q", rec["first_name"], rec["last_name"])
	}

	// enrichment columns come after the source columns
	n := len(sink.columns)
	if n < 4 || sink.columns[n-4] != "processed_at" || sink.columns[n-1] != "id" {
		t.Fatalf("column order = %v", sink.columns)
	}
}

func TestRun_IsDeterministicAcrossRuns(t *testing.T) {
	o1 := New(colmap.Contribution(), pii.Default(), nil)
	o2 := New(colmap.Contribution(), pii.Default(), nil)

	r1, _, err := o1.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err != nil {
		t.Fatalf("run 1: %v", err)
	}
	r2, _, err := o2.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err != nil {
		t.Fatalf("run 2: %v", err)
	}
	if len(r1) != len(r2) {
		t.Fatalf("row counts differ: %d vs %d", len(r1), len(r2))
	}
	for k, v := range r1[0] {
		if r2[0][k] != v {
			t.Fatalf("field %q differs across runs: %q vs %q", k, v, r2[0][k])
		}
	}
}

func TestRun_MissingIdentifierRowExcluded(t *testing.T) {
	csv := "Contribution ID,Personal Email\n" +
		"42,a@example.org\n" +
		",b@example.org\n"

	sink := &fakeSink{}
	o := New(colmap.Contribution(), pii.Default(), sink)

	records, sum, err := o.Run(context.Background(), []byte(csv), testRun(), testDest(), ModeAppend)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.RowsProcessed != 1 || sum.RowsFailed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(records) != 1 || records[0]["id"] != "42" {
		t.Fatalf("records = %v", records)
	}

	found := false
	for _, w := range sum.Warnings {
		if strings.Contains(w, "excluded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no exclusion warning in %v", sum.Warnings)
	}
}

func TestRun_UndecodableInputFailsAtDecode(t *testing.T) {
	o := New(colmap.Contribution(), pii.Default(), &fakeSink{})
	_, _, err := o.Run(context.Background(), []byte{0xFF, 0xC3, 0x28, 0xFF}, testRun(), testDest(), ModeReplace)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if got := FailedStage(err); got != StageDecoded {
		t.Fatalf("failed stage = %q, want decoded", got)
	}
}

func TestRun_SinkErrorFailsAtDelivery(t *testing.T) {
	sink := &fakeSink{err: errors.New("warehouse down")}
	o := New(colmap.Contribution(), pii.Default(), sink)

	_, sum, err := o.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err == nil {
		t.Fatalf("expected delivery error")
	}
	if got := FailedStage(err); got != StageDelivered {
		t.Fatalf("failed stage = %q, want delivered", got)
	}
	// rows were ready even though delivery failed
	if sum.RowsProcessed != 1 || sum.RowsWritten != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRun_NilSinkStopsAtEnriched(t *testing.T) {
	o := New(colmap.Contribution(), pii.Default(), nil)
	records, sum, err := o.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Stage != StageEnriched {
		t.Fatalf("stage = %q, want enriched", sum.Stage)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v", records)
	}
}

func TestRun_MissingCatalogueColumnsBecomeWarnings(t *testing.T) {
	o := New(colmap.Contribution(), pii.Default(), nil)
	_, sum, err := o.Run(context.Background(), []byte(sampleCSV), testRun(), testDest(), ModeReplace)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, w := range sum.Warnings {
		if strings.Contains(w, "absent from input") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected catalogue warnings, got %v", sum.Warnings)
	}
}
