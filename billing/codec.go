/*
codec.go - Serialized installment schedule codec

PURPOSE:
  Installments are persisted as one serialized column on the negotiation
  record. Historical rows stored the schedule as a JSON string inside the
  JSON document (double-encoded); newer rows store a versioned object.
  Readers must accept all forms, so decoding is defensive by contract.

ACCEPTED FORMS:
  {"version":1,"installments":[...]}   current, versioned envelope
  [...]                                bare array (early rows)
  "[...]"                              JSON string wrapping either form

This codec lives at the persistence boundary only. Core logic always works
with []Installment; nothing inside billing/negotiation ever re-parses.

SEE ALSO:
  - installments.go: The in-memory representation
  - store/sqlite: The only caller
*/
package billing

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// WIRE FORM
// =============================================================================

const scheduleCodecVersion = 1

type scheduleEnvelope struct {
	Version      int               `json:"version"`
	Installments []installmentJSON `json:"installments"`
}

type installmentJSON struct {
	Number      int    `json:"number"`
	Value       string `json:"value"`
	BillingDate string `json:"billing_date"`
	DueDate     string `json:"due_date"`
}

const codecDateLayout = "2006-01-02"

// =============================================================================
// ENCODE / DECODE
// =============================================================================

// EncodeSchedule serializes a schedule into the versioned envelope form.
// An empty schedule encodes to the empty string (column stays NULL-ish).
func EncodeSchedule(installments []Installment) (string, error) {
	if len(installments) == 0 {
		return "", nil
	}

	env := scheduleEnvelope{Version: scheduleCodecVersion}
	for _, inst := range installments {
		env.Installments = append(env.Installments, installmentJSON{
			Number:      inst.Number,
			Value:       inst.Value.StringFixed(2),
			BillingDate: inst.BillingDate.Format(codecDateLayout),
			DueDate:     inst.DueDate.Format(codecDateLayout),
		})
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode schedule: %w", err)
	}
	return string(raw), nil
}

// DecodeSchedule deserializes any accepted stored form back into a schedule.
// The empty string decodes to nil.
func DecodeSchedule(raw string) ([]Installment, error) {
	if raw == "" {
		return nil, nil
	}

	data := []byte(raw)

	// Double-encoded rows: the column holds a JSON string wrapping the
	// real document. Unwrap once, then decode normally.
	var wrapped string
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return DecodeSchedule(wrapped)
	}

	var env scheduleEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Installments != nil {
		return decodeItems(env.Installments)
	}

	var bare []installmentJSON
	if err := json.Unmarshal(data, &bare); err == nil {
		return decodeItems(bare)
	}

	return nil, fmt.Errorf("decode schedule: unrecognized form %q", truncate(raw, 40))
}

func decodeItems(items []installmentJSON) ([]Installment, error) {
	installments := make([]Installment, 0, len(items))
	for _, item := range items {
		billingDate, err := time.Parse(codecDateLayout, item.BillingDate)
		if err != nil {
			return nil, fmt.Errorf("decode schedule: installment %d billing date: %w", item.Number, err)
		}
		dueDate, err := time.Parse(codecDateLayout, item.DueDate)
		if err != nil {
			return nil, fmt.Errorf("decode schedule: installment %d due date: %w", item.Number, err)
		}
		installments = append(installments, Installment{
			Number:      item.Number,
			Value:       MustDecimal(item.Value),
			BillingDate: billingDate,
			DueDate:     dueDate,
		})
	}
	return installments, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
