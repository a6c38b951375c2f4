package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

var monthNumbers = map[string]int{
	"januari":   1,
	"februari":  2,
	"maret":     3,
	"april":     4,
	"mei":       5,
	"juni":      6,
	"juli":      7,
	"agustus":   8,
	"september": 9,
	"oktober":   10,
	"november":  11,
	"desember":  12,
}

var (
	deleteByIDRe   = regexp.MustCompile(`^hapus(in|out)\s+#(\d+)$`)
	deleteOnDateRe = regexp.MustCompile(`^hapus(in|out)\s+(\d{2})/(\d{2})/(\d{4})$`)
	kindOnDateRe   = regexp.MustCompile(`^(in|out)\s+(\d{2})/(\d{2})/(\d{4})$`)
	monthReportRe  = regexp.MustCompile(`\b(?:(in|out)\s+)?(januari|februari|maret|april|mei|juni|juli|agustus|september|oktober|november|desember)\s+(\d{4})\b`)
	monthShapeRe   = regexp.MustCompile(`^(?:(?:in|out)\s+)?([a-z]+)\s+(\d{4})$`)
)

// Parse classifies raw text into a Command. Matching is case-insensitive and
// ignores surrounding whitespace; record categories and notes keep the
// sender's original casing.
func Parse(raw string) Command {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "info":
		return Command{Type: TypeInfo}
	case "summary":
		return Command{Type: TypeSummary}
	case "menu", "help":
		return Command{Type: TypeMenu}
	case "halo", "hi", "hello":
		return Command{Type: TypeGreeting, Greeting: trimmed}
	case "today":
		return Command{Type: TypeToday}
	case "in today":
		return Command{Type: TypeKindToday, Kind: domain.KindIncome}
	case "out today":
		return Command{Type: TypeKindToday, Kind: domain.KindExpense}
	case "hapusin":
		return Command{Type: TypeDeleteList, Kind: domain.KindIncome}
	case "hapusout":
		return Command{Type: TypeDeleteList, Kind: domain.KindExpense}
	}

	if m := deleteByIDRe.FindStringSubmatch(lower); m != nil {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err == nil {
			return Command{Type: TypeDeleteByID, Kind: kindFromWord(m[1]), ID: id}
		}
	}

	if m := deleteOnDateRe.FindStringSubmatch(lower); m != nil {
		return Command{
			Type: TypeDeleteOnDate,
			Kind: kindFromWord(m[1]),
			Date: dateFromMatch(m[2], m[3], m[4]),
		}
	}

	if m := kindOnDateRe.FindStringSubmatch(lower); m != nil {
		return Command{
			Type: TypeKindOnDate,
			Kind: kindFromWord(m[1]),
			Date: dateFromMatch(m[2], m[3], m[4]),
		}
	}

	if m := monthReportRe.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[3])
		cmd := Command{
			Type:   TypeMonthReport,
			Prefix: m[1],
			Month:  monthNumbers[m[2]],
			Year:   year,
		}
		if m[1] != "" {
			cmd.Kind = kindFromWord(m[1])
		}
		return cmd
	}

	// A word followed by a four-digit year reads as a month request even when
	// the month name is unknown; that gets an explicit rejection instead of
	// the generic fallback.
	if m := monthShapeRe.FindStringSubmatch(lower); m != nil && m[1] != "in" && m[1] != "out" {
		return Command{Type: TypeMonthUnknown}
	}

	if strings.HasPrefix(lower, "in ") {
		return parseRecord(domain.KindIncome, trimmed)
	}
	if strings.HasPrefix(lower, "out ") {
		return parseRecord(domain.KindExpense, trimmed)
	}

	return Command{Type: TypeUnknown}
}

func parseRecord(kind domain.Kind, trimmed string) Command {
	fields := strings.Fields(trimmed)
	if len(fields) < 3 {
		return Command{Type: TypeRecordInvalid, Kind: kind}
	}

	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || amount < 0 {
		return Command{Type: TypeRecordInvalid, Kind: kind}
	}

	return Command{
		Type:     TypeRecord,
		Kind:     kind,
		Amount:   amount,
		Category: fields[2],
		Note:     strings.Join(fields[3:], " "),
	}
}

func dateFromMatch(day, month, year string) domain.Date {
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	return domain.DateFromParts(d, m, y)
}

func kindFromWord(w string) domain.Kind {
	if w == "in" {
		return domain.KindIncome
	}
	return domain.KindExpense
}
