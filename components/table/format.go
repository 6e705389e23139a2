package table

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no formatter is configured.
var DefaultLocale = language.AmericanEnglish

const (
	dateLayout     = "1/2/2006"
	dateTimeLayout = "1/2/2006, 3:04:05 PM"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter renders cell values by column type.
type Formatter struct {
	Tag            language.Tag
	CurrencySymbol string
	Location       *time.Location
}

// NewFormatter returns a formatter for tag with a dollar currency symbol.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{Tag: tag, CurrencySymbol: "$"}
}

// FormatCell formats value with the default locale.
func FormatCell(value any, kind ColumnType) string {
	return NewFormatter(DefaultLocale).Format(value, kind)
}

// Format renders value for kind. Nil renders as "-" and values that do not
// fit the type fall back to their plain string form.
func (f *Formatter) Format(value any, kind ColumnType) string {
	if value == nil {
		return "-"
	}
	switch kind {
	case TypeCurrency:
		v, ok := toFloat(value)
		if !ok {
			return stringify(value)
		}
		p := message.NewPrinter(f.Tag)
		sign := ""
		if v < 0 {
			sign, v = "-", -v
		}
		return sign + f.CurrencySymbol + p.Sprint(number.Decimal(v, number.Scale(2)))
	case TypeNumber:
		v, ok := toFloat(value)
		if !ok {
			return stringify(value)
		}
		return message.NewPrinter(f.Tag).Sprint(number.Decimal(v))
	case TypeDate, TypeDateTime:
		t, ok := toTime(value)
		if !ok {
			return stringify(value)
		}
		if f.Location != nil {
			t = t.In(f.Location)
		}
		if kind == TypeDate {
			return t.Format(dateLayout)
		}
		return t.Format(dateTimeLayout)
	default:
		return stringify(value)
	}
}

func toTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
