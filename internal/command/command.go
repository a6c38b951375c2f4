// Package command classifies raw chat text into typed commands. Parsing is a
// pure function; the dispatcher decides what each command means.
package command

import "github.com/grafamedia/keuangan-bot/internal/domain"

// Type identifies the recognized command shape.
type Type string

const (
	// TypeInfo shows application information; answered even before registration.
	TypeInfo Type = "info"
	// TypeSummary requests the current-month report; answered even before registration.
	TypeSummary Type = "summary"
	// TypeMenu shows the help menu (menu / help).
	TypeMenu Type = "menu"
	// TypeGreeting is one of the greeting words (halo / hi / hello).
	TypeGreeting Type = "greeting"
	// TypeToday requests the daily comparison report.
	TypeToday Type = "today"
	// TypeKindToday lists today's entries of one kind, with a category chart.
	TypeKindToday Type = "kind_today"
	// TypeKindOnDate lists one kind's entries on an explicit date.
	TypeKindOnDate Type = "kind_on_date"
	// TypeDeleteList shows today's delete candidates for one kind.
	TypeDeleteList Type = "delete_list"
	// TypeDeleteByID deletes a single entry by its #id.
	TypeDeleteByID Type = "delete_by_id"
	// TypeDeleteOnDate deletes every entry of one kind on a date.
	TypeDeleteOnDate Type = "delete_on_date"
	// TypeMonthReport requests the (stubbed) month-range report.
	TypeMonthReport Type = "month_report"
	// TypeMonthUnknown is a month-report request with an unrecognized month name.
	TypeMonthUnknown Type = "month_unknown"
	// TypeRecord records an income or expense entry.
	TypeRecord Type = "record"
	// TypeRecordInvalid is a record command with a bad amount or missing category.
	TypeRecordInvalid Type = "record_invalid"
	// TypeUnknown is anything the grammar does not recognize.
	TypeUnknown Type = "unknown"
)

// Command is the parse result. Only the fields relevant to Type are set.
type Command struct {
	Type Type

	// Kind scopes kind-specific commands; for TypeMonthReport it is only
	// meaningful when Prefix is "in" or "out".
	Kind domain.Kind

	// Greeting is the matched greeting word, echoed back in the reply.
	Greeting string

	// ID addresses a delete-by-id target.
	ID int64

	// Date addresses date-scoped commands. Built literally from the three
	// numeric groups with no calendar validation.
	Date domain.Date

	// Prefix, Month, Year describe a month-report request.
	Prefix string
	Month  int
	Year   int

	// Amount, Category, Note carry a record command's payload.
	Amount   int64
	Category string
	Note     string
}
