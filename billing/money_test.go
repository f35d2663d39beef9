package billing_test

import (
	"testing"

	"github.com/warp/dealflow-engine/billing"
)

// =============================================================================
// CURRENCY PARSING
// =============================================================================

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},         // machine decimal
		{"1.234,56", "1234.56"},        // locale form
		{"R$ 1.234,56", "1234.56"},     // locale with symbol
		{"1234,56", "1234.56"},         // locale without thousands
		{"12.345.678,90", "12345678.9"}, // multiple thousands groups
		{"  500  ", "500"},
		{"0", "0"},
		{"", "0"},          // empty resolves to zero
		{"abc", "0"},       // garbage resolves to zero
		{"12,34,56", "0"},  // malformed locale resolves to zero
	}

	for _, tc := range cases {
		got := billing.ParseCurrency(tc.in)
		if !got.Equal(money(tc.want)) {
			t.Errorf("ParseCurrency(%q): expected %s, got %v", tc.in, tc.want, got)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.5", "1.234,50"},
		{"0", "0,00"},
		{"12345678.9", "12.345.678,90"},
		{"-999.99", "-999,99"},
		{"7", "7,00"},
	}

	for _, tc := range cases {
		got := billing.FormatCurrency(money(tc.in))
		if got != tc.want {
			t.Errorf("FormatCurrency(%s): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

// =============================================================================
// DURATION PARSING
// =============================================================================

func TestParseHours(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"8h", "8", false},
		{"1h30min", "1.5", false},
		{"45min", "0.75", false},
		{"2h15min", "2.25", false},
		{" 3H ", "3", false},
		{"", "0", true},
		{"banana", "0", true},
		{"1h75min", "0", true}, // minutes must be < 60
	}

	for _, tc := range cases {
		got, err := billing.ParseHours(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseHours(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHours(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if !got.Equal(money(tc.want)) {
			t.Errorf("ParseHours(%q): expected %s, got %v", tc.in, tc.want, got)
		}
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8", "8h"},
		{"1.5", "1h30min"},
		{"0.75", "45min"},
		{"0", "0min"},
	}

	for _, tc := range cases {
		got := billing.FormatHours(money(tc.in))
		if got != tc.want {
			t.Errorf("FormatHours(%s): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

// =============================================================================
// SCHEDULE CODEC
// =============================================================================

func TestScheduleCodec_RoundTrip(t *testing.T) {
	original := billing.ComputeInstallments(billing.ScheduleInput{
		ContractType:  billing.ContractProject,
		BillingForm:   billing.BillingInstallments,
		TotalValue:    money("3600"),
		StartDate:     date(2024, 2, 1),
		DueOffsetDays: 15,
		Count:         3,
	})

	encoded, err := billing.EncodeSchedule(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := billing.DecodeSchedule(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(decoded) != len(original) {
		t.Fatalf("expected %d installments, got %d", len(original), len(decoded))
	}
	for i := range original {
		if decoded[i].Number != original[i].Number ||
			!decoded[i].Value.Equal(original[i].Value) ||
			!decoded[i].BillingDate.Equal(original[i].BillingDate) ||
			!decoded[i].DueDate.Equal(original[i].DueDate) {
			t.Errorf("installment %d changed through codec: %+v vs %+v", i+1, decoded[i], original[i])
		}
	}
}

func TestScheduleCodec_AcceptsLegacyForms(t *testing.T) {
	// GIVEN: The three historical stored forms of the same schedule
	// WHEN: Decoding each
	// THEN: All yield the same installments

	bare := `[{"number":1,"value":"100.00","billing_date":"2024-01-01","due_date":"2024-01-31"}]`
	versioned := `{"version":1,"installments":` + bare + `}`
	doubleEncoded := `"[{\"number\":1,\"value\":\"100.00\",\"billing_date\":\"2024-01-01\",\"due_date\":\"2024-01-31\"}]"`

	for name, raw := range map[string]string{"bare": bare, "versioned": versioned, "double-encoded": doubleEncoded} {
		decoded, err := billing.DecodeSchedule(raw)
		if err != nil {
			t.Errorf("%s form: unexpected error: %v", name, err)
			continue
		}
		if len(decoded) != 1 || decoded[0].Number != 1 || !decoded[0].Value.Equal(money("100")) {
			t.Errorf("%s form: unexpected result %+v", name, decoded)
		}
	}

	if _, err := billing.DecodeSchedule("not json at all"); err == nil {
		t.Error("expected error for unrecognized form")
	}

	empty, err := billing.DecodeSchedule("")
	if err != nil || empty != nil {
		t.Errorf("empty column should decode to nil, got %v / %v", empty, err)
	}
}
