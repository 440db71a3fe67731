package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/billable/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(DefaultRules())
	require.NoError(t, err)
	return e
}

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantHours    float64
		wantEarned   float64
		wantReceived float64
		wantMatched  []model.Field
	}{
		{
			name:         "invoice summary sentence",
			text:         "Total hours worked: 142.25. Total amount: $3,556.25. Received $0.",
			wantHours:    142.25,
			wantEarned:   3556.25,
			wantReceived: 0,
			wantMatched:  []model.Field{model.FieldHours, model.FieldEarned, model.FieldReceived},
		},
		{
			name:        "largest dollar figure wins",
			text:        "House cleaning $120.00\nOffice cleaning $1,250.50\nRate $25\nInvoice total $6,169.50\n",
			wantEarned:  6169.50,
			wantMatched: []model.Field{model.FieldEarned},
		},
		{
			name:        "hours after number",
			text:        "Worked 176 hours this month",
			wantHours:   176,
			wantMatched: []model.Field{model.FieldHours},
		},
		{
			name:         "payment keyword",
			text:         "Payment of $2,000 applied",
			wantEarned:   2000,
			wantReceived: 2000,
			wantMatched:  []model.Field{model.FieldEarned, model.FieldReceived},
		},
		{
			name:        "case insensitive",
			text:        "TOTAL HOURS 88.5\nAMOUNT EARNED 2,212.50",
			wantHours:   88.5,
			wantEarned:  2212.50,
			wantMatched: []model.Field{model.FieldHours, model.FieldEarned},
		},
		{
			name: "no figures",
			text: "Thank you for your business.",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	e := newDefaultExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)

			assert.InDelta(t, tt.wantHours, got.HoursWorked, 1e-9)
			assert.InDelta(t, tt.wantEarned, got.AmountEarned, 1e-9)
			assert.InDelta(t, tt.wantReceived, got.AmountReceived, 1e-9)

			for _, f := range []model.Field{model.FieldHours, model.FieldEarned, model.FieldReceived} {
				assert.Equal(t, contains(tt.wantMatched, f), got.IsMatched(f), "matched flag for %s", f)
			}
		})
	}
}

func contains(fields []model.Field, f model.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

func TestExtractor_EarnedIsMaximumOfMatches(t *testing.T) {
	e := newDefaultExtractor(t)
	text := "Subtotal $310.00. Fee $12.75. Total amount $4,406.25. Earned 999.99"

	got := e.Extract(text)

	for _, v := range []float64{310, 12.75, 4406.25, 999.99} {
		assert.GreaterOrEqual(t, got.AmountEarned, v)
	}
	assert.InDelta(t, 4406.25, got.AmountEarned, 1e-9)
}

func TestExtractor_FallsThroughUnparsableCandidate(t *testing.T) {
	e, err := NewExtractor(Rules{
		Hours: []string{`hours:\s*(\S+)`, `(\d+) hrs`},
	})
	require.NoError(t, err)

	got := e.Extract("hours: TBD, 40 hrs logged")

	assert.InDelta(t, 40, got.HoursWorked, 1e-9)
	assert.True(t, got.IsMatched(model.FieldHours))
	assert.False(t, got.IsMatched(model.FieldEarned))
}

func TestExtractor_SkipsNonFiniteValues(t *testing.T) {
	e, err := NewExtractor(Rules{Earned: []string{`total (\w+)`}})
	require.NoError(t, err)

	got := e.Extract("total NaN, total Inf, total 12")

	assert.InDelta(t, 12, got.AmountEarned, 1e-9)
}

func TestExtractor_CaptureWithSurroundingSpace(t *testing.T) {
	e, err := NewExtractor(Rules{
		Hours:  []string{`hours:([\d.\s]+)h`},
		Earned: []string{`total:([\d,.\s]+)usd`},
	})
	require.NoError(t, err)

	got := e.Extract("Hours: 40.5 h\nTotal: 1,012.50 USD")

	assert.InDelta(t, 40.5, got.HoursWorked, 1e-9)
	assert.InDelta(t, 1012.5, got.AmountEarned, 1e-9)
	assert.True(t, got.IsMatched(model.FieldHours))
	assert.True(t, got.IsMatched(model.FieldEarned))
}

func TestExtractor_Excerpt(t *testing.T) {
	e := newDefaultExtractor(t)
	long := make([]byte, 800)
	for i := range long {
		long[i] = 'x'
	}

	got := e.Extract(string(long))

	assert.Len(t, got.Excerpt, excerptLength)
}

func TestNewExtractor_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
	}{
		{name: "does not compile", rules: Rules{Hours: []string{`(\d+`}}},
		{name: "no capture group", rules: Rules{Earned: []string{`\$\d+`}}},
		{name: "two capture groups", rules: Rules{Received: []string{`(paid) (\d+)`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor(tt.rules)
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `hours:
  - 'billable\s+(\d+\.?\d*)'
earned: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rules, err := LoadRules(path)
	require.NoError(t, err)

	assert.Equal(t, []string{`billable\s+(\d+\.?\d*)`}, rules.Hours)
	assert.Equal(t, DefaultRules().Earned, rules.Earned)
	assert.Equal(t, DefaultRules().Received, rules.Received)

	e, err := NewExtractor(rules)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, e.Extract("Billable 12.5").HoursWorked, 1e-9)
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hours: [unterminated"), 0600))
	_, err = LoadRules(path)
	require.Error(t, err)
}
