package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// salaryPattern ties a compiled pattern to its period. Yearly amounts are
// folded to a monthly estimate so the stored number is comparable across
// sources.
type salaryPattern struct {
	re      *regexp.Regexp
	perYear bool
}

const (
	currency  = `(?:€|£|\$|eur|gbp|usd)`
	amount    = `([0-9][0-9.,]*)`
	perMonth  = `(?:/\s*month|per\s+month|a\s+month|monthly|/\s*mo\b)`
	perYear   = `(?:/\s*year|per\s+year|a\s+year|yearly|annually|per\s+annum|p\.a\.)`
	separator = `\s*`
)

// Ordered: symbol-first beats amount-first, monthly beats yearly. First
// matching pattern wins.
var salaryPatterns = []salaryPattern{
	{re: regexp.MustCompile(`(?i)` + currency + separator + amount + separator + perMonth)},
	{re: regexp.MustCompile(`(?i)` + amount + separator + currency + separator + perMonth)},
	{re: regexp.MustCompile(`(?i)` + currency + separator + amount + separator + perYear), perYear: true},
	{re: regexp.MustCompile(`(?i)` + amount + separator + currency + separator + perYear), perYear: true},
}

var thousandsSep = strings.NewReplacer(".", "", ",", "", " ", "")

// SalaryEstimate scans text for a currency-qualified amount with a
// per-month or per-year qualifier and returns a monthly estimate, 0 when
// nothing matches or the amount does not parse.
func SalaryEstimate(text string) int {
	for _, p := range salaryPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(thousandsSep.Replace(m[1]))
		if err != nil {
			return 0
		}
		if p.perYear {
			n /= 12
		}
		return n
	}
	return 0
}
