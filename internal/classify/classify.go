// Package classify recovers typed fields from the untyped cells of a portal
// table row. The portal's column layout is not stable, so detection goes by
// value shape instead of column position.
package classify

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	codePattern  = regexp.MustCompile(`^\d{4}\.\d{4}\.\d{6}$`)
	datePattern  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	moneyPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})*,\d{2}$`)
)

// Kind tags what a single cell looks like.
type Kind int

const (
	Unclassified Kind = iota
	Identifier
	Date
	Money
	Tag
)

// Record is the typed view of one table row. Candidate slices keep cell
// order; entries are nil when the shape matched but conversion failed.
type Record struct {
	Identifier string
	Dates      []*string
	Prices     []*float64
	Tag        *string
}

// Validity returns the primary date candidate. The portal lists the agreement
// validity first, so first-in-row-order wins; that is a heuristic, not a
// guarantee.
func (r Record) Validity() *string {
	if len(r.Dates) == 0 {
		return nil
	}
	return r.Dates[0]
}

// Price returns the primary money candidate, same first-in-order rule.
func (r Record) Price() *float64 {
	if len(r.Prices) == 0 {
		return nil
	}
	return r.Prices[0]
}

// IsExternalCode reports whether s has the dddd.dddd.dddddd identifier shape.
func IsExternalCode(s string) bool {
	return codePattern.MatchString(strings.TrimSpace(s))
}

// ClassifyCell tags one cell. Date exclusion must run before Tag: agreement
// references ("123/2024") and dates share the slash.
func ClassifyCell(cell string) Kind {
	txt := strings.TrimSpace(cell)
	switch {
	case codePattern.MatchString(txt):
		return Identifier
	case datePattern.MatchString(txt):
		return Date
	case strings.Contains(txt, "R$") || moneyPattern.MatchString(txt):
		return Money
	case strings.Contains(txt, "/") && len(txt) < 20:
		return Tag
	default:
		return Unclassified
	}
}

// Classify builds a Record from raw row cells. A row without an identifier
// cell yields Identifier == "" and the caller must skip it; that is a
// precondition, not an error. Classify never fails on malformed input.
func Classify(cells []string) Record {
	rec := Record{}
	for _, cell := range cells {
		if txt := strings.TrimSpace(cell); codePattern.MatchString(txt) {
			rec.Identifier = txt
			break
		}
	}
	if rec.Identifier == "" {
		return rec
	}

	for _, cell := range cells {
		txt := strings.TrimSpace(cell)
		if txt == rec.Identifier {
			continue
		}
		switch ClassifyCell(txt) {
		case Date:
			rec.Dates = append(rec.Dates, ParseDate(txt))
		case Money:
			rec.Prices = append(rec.Prices, ParseMoney(txt))
		case Tag:
			if rec.Tag == nil {
				rec.Tag = &txt
			}
		}
	}
	return rec
}

// ParseDate converts DD/MM/YYYY to ISO YYYY-MM-DD. Shapes that match but do
// not form a calendar date (day 32, month 13) return nil.
func ParseDate(s string) *string {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

// ParseMoney converts a Brazilian-format currency cell (optional R$ marker,
// thousands dot, decimal comma) to a value rounded to 2 fractional digits.
func ParseMoney(s string) *float64 {
	v := ParseDecimal(strings.ReplaceAll(s, "R$", ""))
	if v == nil {
		return nil
	}
	rounded := math.Round(*v*100) / 100
	return &rounded
}

// ParseDecimal converts a decimal-comma number without rounding. The per-item
// agreement price path uses this directly and stores the unrounded value.
func ParseDecimal(s string) *float64 {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00A0", "")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	if clean == "" {
		return nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &v
}
