// Package sequence renders decree numbers and tracks the running counter.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultFormat is the conventional decree number pattern.
const DefaultFormat = "{NOMOR}/SK/{BL_ROMA}/{TAHUN}"

// Token groups. Every spelling in a group renders the same value.
var (
	sequenceTokens = []string{"{NOMOR}", "{NO}", "{NO_URUT}", "{URUT}", "{SEQ}"}
	dayTokens      = []string{"{TGL}", "{TANGGAL}", "{DD}"}
	monthTokens    = []string{"{BL}", "{BULAN}", "{MM}"}
	romanTokens    = []string{"{BL_ROMA}", "{BULAN_ROMAWI}", "{ROMAWI}", "{BL_ROMAWI}"}
	yearTokens     = []string{"{TH}", "{TAHUN}", "{YYYY}"}
)

var romanMonths = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII"}

// Format renders template for the given sequence and date. Tokens are
// replaced in a single pass, so a substituted value is never rescanned, and
// unknown tokens are left as written.
func Format(template string, seq int, date time.Time) string {
	values := map[string]string{}
	set := func(tokens []string, value string) {
		for _, tok := range tokens {
			values[tok] = value
			values[strings.ToLower(tok)] = value
		}
	}
	set(sequenceTokens, fmt.Sprintf("%04d", seq))
	set(dayTokens, fmt.Sprintf("%02d", date.Day()))
	set(monthTokens, strconv.Itoa(int(date.Month())))
	set(romanTokens, Roman(int(date.Month())))
	set(yearTokens, fmt.Sprintf("%04d", date.Year()))

	pairs := make([]string, 0, len(values)*2)
	for tok, v := range values {
		pairs = append(pairs, tok, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Roman returns the subtractive Roman numeral for a month number, or "" when
// month is outside 1..12.
func Roman(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return romanMonths[month-1]
}
