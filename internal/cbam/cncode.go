package cbam

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NormalizeCNCode strips separators from a CN code and returns its digits.
// A code with an odd number of digits is assumed to have lost its leading
// zero (chapters 01-09) and is padded back. A code that instead lost a
// trailing digit is misread by this rule: "7208100" becomes heading 0720 and
// falls out of scope rather than mapping to 7208. Codes shorter than a 4-digit
// heading or containing non-digits are rejected.
func NormalizeCNCode(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '-':
		default:
			return "", false
		}
	}
	code := b.String()
	if len(code)%2 == 1 {
		code = "0" + code
	}
	if len(code) < 4 || len(code) > 10 {
		return "", false
	}
	return code, true
}

// Heading returns the integer 4-digit heading of a CN code.
func Heading(raw string) (int, bool) {
	code, ok := NormalizeCNCode(raw)
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(code[:4])
	if err != nil {
		return 0, false
	}
	return h, true
}

type headingInterval struct {
	from, to int
	category Category
}

// CNIndex maps integer CN headings to goods categories through a sorted list
// of disjoint intervals.
type CNIndex struct {
	intervals []headingInterval
}

// NewCNIndex builds the index from category ranges minus their exclusions.
// Overlapping categories are rejected.
func NewCNIndex(defs []CategoryDefinition) (*CNIndex, error) {
	var intervals []headingInterval
	for _, def := range defs {
		for _, r := range def.Ranges {
			if r.To < r.From {
				return nil, fmt.Errorf("category %s: range %d-%d is inverted", def.Category, r.From, r.To)
			}
			intervals = append(intervals, subtractRanges(headingInterval{r.From, r.To, def.Category}, def.Exclusions)...)
		}
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].from < intervals[j].from })
	for i := 1; i < len(intervals); i++ {
		if intervals[i].from <= intervals[i-1].to {
			return nil, fmt.Errorf("CN headings %d-%d (%s) overlap %d-%d (%s)",
				intervals[i].from, intervals[i].to, intervals[i].category,
				intervals[i-1].from, intervals[i-1].to, intervals[i-1].category)
		}
	}

	return &CNIndex{intervals: intervals}, nil
}

// subtractRanges removes every exclusion from iv, possibly splitting it.
func subtractRanges(iv headingInterval, exclusions []HeadingRange) []headingInterval {
	parts := []headingInterval{iv}
	for _, ex := range exclusions {
		var next []headingInterval
		for _, p := range parts {
			if ex.To < p.from || ex.From > p.to {
				next = append(next, p)
				continue
			}
			if ex.From > p.from {
				next = append(next, headingInterval{p.from, ex.From - 1, p.category})
			}
			if ex.To < p.to {
				next = append(next, headingInterval{ex.To + 1, p.to, p.category})
			}
		}
		parts = next
	}
	return parts
}

// Category returns the goods category for a CN code, or false when the code
// is outside CBAM scope or malformed.
func (idx *CNIndex) Category(cnCode string) (Category, bool) {
	h, ok := Heading(cnCode)
	if !ok {
		return "", false
	}
	i := sort.Search(len(idx.intervals), func(i int) bool { return idx.intervals[i].to >= h })
	if i < len(idx.intervals) && idx.intervals[i].from <= h {
		return idx.intervals[i].category, true
	}
	return "", false
}
