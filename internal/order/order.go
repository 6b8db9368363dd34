// Package order turns reviewed document text into simulated sales orders.
package order

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scanorder/internal/logger"
	"scanorder/internal/metrics"
	"scanorder/internal/validation"
)

// OrderIDPrefix precedes the 8 hex characters of every generated order id.
const OrderIDPrefix = "SO-"

// TextFieldPrefix marks form fields that carry editable document text.
const TextFieldPrefix = "text_"

// FileFieldPrefix marks the hidden form fields that carry the stored upload name.
const FileFieldPrefix = "file_"

// Field is one reviewed text entry as submitted by the user.
type Field struct {
	Index string
	File  string
	Text  string
}

// Entry is the outcome of submitting one Field.
type Entry struct {
	Index       string    `json:"index"`
	File        string    `json:"file,omitempty"`
	Text        string    `json:"text"`
	Valid       bool      `json:"valid"`
	PONumber    string    `json:"po_number,omitempty"`
	OrderID     string    `json:"order_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Ledger records submitted entries somewhere outside the process.
type Ledger interface {
	Record(ctx context.Context, entries []Entry) error
}

// NewOrderID returns "SO-" followed by the first 8 lowercase hex characters of a random UUID.
func NewOrderID() string {
	return OrderIDPrefix + uuid.NewString()[:8]
}

// Processor validates submitted text and assigns order ids.
type Processor struct {
	verifier *validation.Verifier
	ledger   Ledger
	log      zerolog.Logger
}

// NewProcessor creates a Processor. A nil ledger disables recording.
func NewProcessor(verifier *validation.Verifier, ledger Ledger) *Processor {
	if verifier == nil {
		verifier = validation.DefaultVerifier()
	}
	return &Processor{
		verifier: verifier,
		ledger:   ledger,
		log:      logger.WithComponent("order"),
	}
}

// Submit validates every field and generates an order id for each.
// Ledger failures are logged and do not affect the returned entries.
func (p *Processor) Submit(ctx context.Context, fields []Field) []Entry {
	now := time.Now()
	entries := make([]Entry, 0, len(fields))

	for _, f := range fields {
		po, _ := validation.ExtractPO(f.Text)
		entry := Entry{
			Index:       f.Index,
			File:        f.File,
			Text:        f.Text,
			Valid:       p.verifier.Verify(f.Text),
			PONumber:    po,
			OrderID:     NewOrderID(),
			SubmittedAt: now,
		}
		metrics.RecordSubmission(entry.Valid)

		p.log.Info().
			Str("index", entry.Index).
			Str("file", entry.File).
			Str("po_number", entry.PONumber).
			Bool("valid", entry.Valid).
			Str("order_id", entry.OrderID).
			Msg("Sales order created")

		entries = append(entries, entry)
	}

	if p.ledger != nil && len(entries) > 0 {
		if err := p.ledger.Record(ctx, entries); err != nil {
			p.log.Warn().
				Err(err).
				Int("entries", len(entries)).
				Msg("Failed to record sales orders in ledger")
		}
	}

	return entries
}

// FieldsFromForm collects every "text_<idx>" value of a posted form, paired
// with its "file_<idx>" value when present. Only the first value of a
// repeated key is used. Fields are ordered by numeric index; non-numeric
// indexes sort after numeric ones, lexically.
func FieldsFromForm(form map[string][]string) []Field {
	var fields []Field
	for key, values := range form {
		if !strings.HasPrefix(key, TextFieldPrefix) || len(values) == 0 {
			continue
		}
		idx := strings.TrimPrefix(key, TextFieldPrefix)
		field := Field{Index: idx, Text: values[0]}
		if file := form[FileFieldPrefix+idx]; len(file) > 0 {
			field.File = file[0]
		}
		fields = append(fields, field)
	}

	sort.Slice(fields, func(i, j int) bool {
		a, errA := strconv.Atoi(fields[i].Index)
		b, errB := strconv.Atoi(fields[j].Index)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return fields[i].Index < fields[j].Index
		}
	})
	return fields
}
