package order

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanorder/internal/validation"
)

var orderIDPattern = regexp.MustCompile(`^SO-[0-9a-f]{8}$`)

type recordingLedger struct {
	got []Entry
	err error
}

func (l *recordingLedger) Record(_ context.Context, entries []Entry) error {
	l.got = append(l.got, entries...)
	return l.err
}

func TestNewOrderIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewOrderID()
		require.Regexp(t, orderIDPattern, id)
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}

func TestSubmit(t *testing.T) {
	ledger := &recordingLedger{}
	p := NewProcessor(nil, ledger)

	entries := p.Submit(context.Background(), []Field{
		{Index: "0", File: "a_scan.png", Text: "PO: 12345\nOther: x"},
		{Index: "1", Text: "PO:99999"},
		{Index: "2", Text: "no po line here"},
	})

	require.Len(t, entries, 3)
	assert.True(t, entries[0].Valid)
	assert.Equal(t, "12345", entries[0].PONumber)
	assert.Equal(t, "a_scan.png", entries[0].File)
	assert.False(t, entries[1].Valid)
	assert.Equal(t, "99999", entries[1].PONumber)
	assert.False(t, entries[2].Valid)
	assert.Empty(t, entries[2].PONumber)

	ids := map[string]bool{}
	for _, e := range entries {
		assert.Regexp(t, orderIDPattern, e.OrderID)
		ids[e.OrderID] = true
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, entries, ledger.got)
}

func TestSubmitMatchesVerifyPO(t *testing.T) {
	texts := []string{"PO: 98765", "po reference 12345", "Po: 12345 \n", ""}
	p := NewProcessor(nil, nil)

	for i, text := range texts {
		entries := p.Submit(context.Background(), []Field{{Index: "0", Text: text}})
		require.Len(t, entries, 1)
		assert.Equal(t, validation.VerifyPO(text), entries[0].Valid, "text %d", i)
	}
}

func TestSubmitIgnoresLedgerFailure(t *testing.T) {
	ledger := &recordingLedger{err: errors.New("sheet unavailable")}
	p := NewProcessor(nil, ledger)

	entries := p.Submit(context.Background(), []Field{{Index: "0", Text: "PO: 12345"}})
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Valid)
}

func TestSubmitEmpty(t *testing.T) {
	ledger := &recordingLedger{}
	entries := NewProcessor(nil, ledger).Submit(context.Background(), nil)
	assert.Empty(t, entries)
	assert.Nil(t, ledger.got)
}

func TestFieldsFromForm(t *testing.T) {
	form := map[string][]string{
		"text_10":   {"ten"},
		"text_2":    {"two", "ignored"},
		"file_2":    {"x_two.png"},
		"text_note": {"named"},
		"text_0":    {"zero"},
		"csrf":      {"token"},
		"file_0":    {"x_zero.pdf"},
	}

	fields := FieldsFromForm(form)
	require.Len(t, fields, 4)

	assert.Equal(t, Field{Index: "0", File: "x_zero.pdf", Text: "zero"}, fields[0])
	assert.Equal(t, Field{Index: "2", File: "x_two.png", Text: "two"}, fields[1])
	assert.Equal(t, Field{Index: "10", Text: "ten"}, fields[2])
	assert.Equal(t, Field{Index: "note", Text: "named"}, fields[3])
}
