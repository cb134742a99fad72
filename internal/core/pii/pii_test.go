package pii

import (
	"reflect"
	"testing"

	"donorpipe/internal/core/tabular"
)

const (
	hashJane = "4f23798d92708359b734a18172c9c864f1d48044a754115a0d4b843bca3a5332"
	hashDoe  = "fd53ef835b15485572a6e82cf470dcb41fd218ae5751ab7531c956a2a6bcd3c7"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain value", in: "Jane", want: hashJane},
		{name: "surrounding space trimmed before hashing", in: "  Jane  ", want: hashJane},
		{name: "empty in empty out", in: "", want: ""},
		{name: "whitespace only is empty", in: "   ", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Hash(tc.in); got != tc.want {
				t.Fatalf("Hash(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	// determinism and distinctness
	if Hash("Jane") != Hash("Jane") {
		t.Fatalf("Hash not deterministic")
	}
	if Hash("Jane") == Hash("Doe") {
		t.Fatalf("distinct inputs collided")
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"Jane Doe", "Jane", "Doe"},
		{"Jane", "Jane", ""},
		{"  Jane   Doe  ", "Jane", "Doe"},
		{"Jane van Doe", "Jane", "van Doe"},
		{"", "", ""},
	}
	for _, tc := range tests {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("SplitName(%q) = (%q, %q), want (%q, %q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}

func TestApply_HashesAndSplitsContactName(t *testing.T) {
	tab := &tabular.Table{
		Columns: []string{"contribution_id", "Contact Name", "email"},
		Rows: []tabular.Row{
			{"contribution_id": "42", "Contact Name": "Jane Doe", "email": "jane@example.org"},
		},
	}

	Default().Apply(tab)

	want := []string{"contribution_id", "first_name", "last_name", "email"}
	if !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("columns = %v, want %v", tab.Columns, want)
	}

	row := tab.Rows[0]
	if _, ok := row["Contact Name"]; ok {
		t.Fatalf("raw Contact Name survived: %v", row)
	}
	if row["first_name"] != hashJane {
		t.Fatalf("first_name = %q, want %q", row["first_name"], hashJane)
	}
	if row["last_name"] != hashDoe {
		t.Fatalf("last_name = %q, want %q", row["last_name"], hashDoe)
	}
	if row["email"] == "jane@example.org" || row["email"] == "" {
		t.Fatalf("email not hashed: %q", row["email"])
	}
	if row["contribution_id"] != "42" {
		t.Fatalf("non sensitive column touched: %q", row["contribution_id"])
	}
}

func TestApply_EmptyCellsStayEmpty(t *testing.T) {
	tab := &tabular.Table{
		Columns: []string{"email", "phone"},
		Rows:    []tabular.Row{{"email": "", "phone": "  "}},
	}
	Default().Apply(tab)
	if tab.Rows[0]["email"] != "" || tab.Rows[0]["phone"] != "" {
		t.Fatalf("blank cells hashed: %v", tab.Rows[0])
	}
}

func TestApply_SingleTokenName(t *testing.T) {
	tab := &tabular.Table{
		Columns: []string{"Contact Name"},
		Rows:    []tabular.Row{{"Contact Name": "Jane"}},
	}
	Default().Apply(tab)
	row := tab.Rows[0]
	if row["first_name"] != hashJane {
		t.Fatalf("first_name = %q", row["first_name"])
	}
	if row["last_name"] != "" {
		t.Fatalf("last_name should be empty for single token, got %q", row["last_name"])
	}
}

func TestApply_NoneLeavesEverything(t *testing.T) {
	tab := &tabular.Table{
		Columns: []string{"email"},
		Rows:    []tabular.Row{{"email": "jane@example.org"}},
	}
	None().Apply(tab)
	if tab.Rows[0]["email"] != "jane@example.org" {
		t.Fatalf("None spec modified a row: %v", tab.Rows[0])
	}
}
