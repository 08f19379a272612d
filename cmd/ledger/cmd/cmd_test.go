package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
	"ledger/internal/forecast"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("AMQP_URL", "")
	t.Setenv("CATEGORIES_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCategorizeCommand(t *testing.T) {
	setTestEnv(t)

	out, err := execute(t, "categorize", "UBER TRIP 1234", "Netflix", "corner shop")
	if err != nil {
		t.Fatalf("categorize: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	for i, want := range []string{"Transport", "Entertainment", core.DefaultCategory} {
		if !strings.HasSuffix(lines[i], want) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestReportCommandJSON(t *testing.T) {
	setTestEnv(t)

	out, err := execute(t, "report", "--date", "2025-03-31", "--format", "json", "--export=false")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var got struct {
		ReferenceDate string            `json:"reference_date"`
		Historical    []json.RawMessage `json:"historical"`
		Projection    []json.RawMessage `json:"projection"`
		Insight       struct {
			Category string `json:"category"`
			Text     string `json:"text"`
		} `json:"insight"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.ReferenceDate != "2025-03-31" {
		t.Errorf("reference_date = %q", got.ReferenceDate)
	}
	if len(got.Historical) != 30 || len(got.Projection) != 30 {
		t.Errorf("got %d historical and %d projected points, want 30 each", len(got.Historical), len(got.Projection))
	}
	if got.Insight.Category != "Food" || got.Insight.Text == "" {
		t.Errorf("unexpected insight %+v", got.Insight)
	}
}

func TestReportCommandRejectsUnknownFormat(t *testing.T) {
	setTestEnv(t)

	if _, err := execute(t, "report", "--date", "2025-03-31", "--format", "xml", "--export=false"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestBadReferenceDate(t *testing.T) {
	setTestEnv(t)

	if _, err := execute(t, "report", "--date", "31/03/2025", "--format", "json", "--export=false"); err == nil {
		t.Fatal("expected error for malformed --date")
	}
}

func TestWriteTextReport(t *testing.T) {
	today := core.NewDate(2025, 3, 31)
	txs := []core.Transaction{
		{Date: today.AddDays(-2), Description: "Pizza Hut order", Amount: decimal.NewFromInt(-600)},
		{Date: today.AddDays(-1), Description: "Uber trip", Amount: decimal.NewFromInt(-300)},
		{Date: today, Description: "Salary", Amount: decimal.NewFromInt(40000)},
	}
	p := forecast.DefaultParams()
	snap, err := forecast.Build(txs, p, today)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var out bytes.Buffer
	if err := writeTextReport(&out, snap, p); err != nil {
		t.Fatalf("writeTextReport: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Ledger as of 2025-03-31",
		"₹59,100",
		"Food",
		"1 transaction",
		snap.Insight.Text,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 transactions"},
		{1, "1 transaction"},
		{1200, "1,200 transactions"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, "transaction"); got != tt.want {
			t.Errorf("plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
