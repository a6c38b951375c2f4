package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

func TestParse_Keywords(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Command
	}{
		{name: "info", input: "info", expected: Command{Type: TypeInfo}},
		{name: "summary uppercase", input: "SUMMARY", expected: Command{Type: TypeSummary}},
		{name: "menu", input: "menu", expected: Command{Type: TypeMenu}},
		{name: "help maps to menu", input: "Help", expected: Command{Type: TypeMenu}},
		{name: "today", input: "today", expected: Command{Type: TypeToday}},
		{name: "in today", input: "in today", expected: Command{Type: TypeKindToday, Kind: domain.KindIncome}},
		{name: "out today mixed case", input: "Out Today", expected: Command{Type: TypeKindToday, Kind: domain.KindExpense}},
		{name: "bare hapusin", input: "hapusin", expected: Command{Type: TypeDeleteList, Kind: domain.KindIncome}},
		{name: "bare hapusout", input: "hapusout", expected: Command{Type: TypeDeleteList, Kind: domain.KindExpense}},
		{name: "surrounding whitespace", input: "  today  ", expected: Command{Type: TypeToday}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parse(tc.input))
		})
	}
}

func TestParse_Greetings(t *testing.T) {
	for _, word := range []string{"halo", "hi", "hello"} {
		cmd := Parse(word)
		assert.Equal(t, TypeGreeting, cmd.Type)
		assert.Equal(t, word, cmd.Greeting)
	}

	// The echoed word keeps the sender's casing.
	cmd := Parse("Halo")
	assert.Equal(t, TypeGreeting, cmd.Type)
	assert.Equal(t, "Halo", cmd.Greeting)
}

func TestParse_DeleteByID(t *testing.T) {
	cmd := Parse("hapusin #12")
	assert.Equal(t, TypeDeleteByID, cmd.Type)
	assert.Equal(t, domain.KindIncome, cmd.Kind)
	assert.Equal(t, int64(12), cmd.ID)

	cmd = Parse("HAPUSOUT #7")
	assert.Equal(t, TypeDeleteByID, cmd.Type)
	assert.Equal(t, domain.KindExpense, cmd.Kind)
	assert.Equal(t, int64(7), cmd.ID)

	// Missing the hash sign falls through to the unknown fallback.
	assert.Equal(t, TypeUnknown, Parse("hapusin 12").Type)
}

func TestParse_DateCommands(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expType  Type
		expKind  domain.Kind
		expDate  domain.Date
	}{
		{name: "delete income on date", input: "hapusin 05/03/2025", expType: TypeDeleteOnDate, expKind: domain.KindIncome, expDate: "2025-03-05"},
		{name: "delete expense on date", input: "hapusout 31/12/2024", expType: TypeDeleteOnDate, expKind: domain.KindExpense, expDate: "2024-12-31"},
		{name: "query income on date", input: "in 05/03/2025", expType: TypeKindOnDate, expKind: domain.KindIncome, expDate: "2025-03-05"},
		{name: "query expense on date", input: "out 01/01/2025", expType: TypeKindOnDate, expKind: domain.KindExpense, expDate: "2025-01-01"},
		{name: "impossible date parses literally", input: "in 31/02/2025", expType: TypeKindOnDate, expKind: domain.KindIncome, expDate: "2025-02-31"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := Parse(tc.input)
			assert.Equal(t, tc.expType, cmd.Type)
			assert.Equal(t, tc.expKind, cmd.Kind)
			assert.Equal(t, tc.expDate, cmd.Date)
		})
	}
}

func TestParse_MonthReport(t *testing.T) {
	cmd := Parse("Maret 2025")
	assert.Equal(t, TypeMonthReport, cmd.Type)
	assert.Equal(t, 3, cmd.Month)
	assert.Equal(t, 2025, cmd.Year)
	assert.Empty(t, cmd.Prefix)

	cmd = Parse("in desember 2024")
	assert.Equal(t, TypeMonthReport, cmd.Type)
	assert.Equal(t, "in", cmd.Prefix)
	assert.Equal(t, domain.KindIncome, cmd.Kind)
	assert.Equal(t, 12, cmd.Month)

	// The month pattern matches inside longer text too.
	cmd = Parse("laporan maret 2025")
	assert.Equal(t, TypeMonthReport, cmd.Type)
	assert.Equal(t, 3, cmd.Month)

	// An unknown month name before a year is still a month request,
	// rejected explicitly rather than falling through.
	assert.Equal(t, TypeMonthUnknown, Parse("marret 2025").Type)
	assert.Equal(t, TypeMonthUnknown, Parse("out marret 2025").Type)
}

func TestParse_Record(t *testing.T) {
	cmd := Parse("in 50000 Gaji")
	assert.Equal(t, TypeRecord, cmd.Type)
	assert.Equal(t, domain.KindIncome, cmd.Kind)
	assert.Equal(t, int64(50000), cmd.Amount)
	assert.Equal(t, "Gaji", cmd.Category)
	assert.Empty(t, cmd.Note)

	cmd = Parse("out 20000 Makan siang di warung")
	assert.Equal(t, TypeRecord, cmd.Type)
	assert.Equal(t, domain.KindExpense, cmd.Kind)
	assert.Equal(t, int64(20000), cmd.Amount)
	assert.Equal(t, "Makan", cmd.Category)
	assert.Equal(t, "siang di warung", cmd.Note)

	// Category keeps the sender's casing even though keywords are folded.
	cmd = Parse("IN 100 Bonus akhir tahun")
	assert.Equal(t, TypeRecord, cmd.Type)
	assert.Equal(t, "Bonus", cmd.Category)
	assert.Equal(t, "akhir tahun", cmd.Note)
}

func TestParse_RecordInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		kind  domain.Kind
	}{
		{name: "non-numeric amount", input: "in abc Gaji", kind: domain.KindIncome},
		{name: "trailing garbage in amount", input: "in 100abc Gaji", kind: domain.KindIncome},
		{name: "negative amount", input: "out -500 Makan", kind: domain.KindExpense},
		{name: "missing category", input: "in 50000", kind: domain.KindIncome},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := Parse(tc.input)
			assert.Equal(t, TypeRecordInvalid, cmd.Type)
			assert.Equal(t, tc.kind, cmd.Kind)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	for _, input := range []string{"", "terima kasih", "apa kabar?", "hapus #1"} {
		assert.Equal(t, TypeUnknown, Parse(input).Type, "input %q", input)
	}
}
