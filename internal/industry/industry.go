// Package industry assigns two-digit NIC manufacturing division codes from
// free-text activity descriptions.
package industry

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exporter-premium/internal/table"
)

// Unclassified is returned when no keyword rule matches.
const Unclassified = "Unclassified"

// Default output column names written by Augment.
const (
	ColCode        = "NIC Classification Code"
	ColDescription = "Classification Description"
)

// Descriptions maps NIC 2008 division codes 10-33 to their titles.
var Descriptions = map[string]string{
	"10": "Manufacture of food products",
	"11": "Manufacture of beverages",
	"12": "Manufacture of tobacco products",
	"13": "Manufacture of textiles",
	"14": "Manufacture of wearing apparel",
	"15": "Manufacture of leather and related products",
	"16": "Manufacture of wood and products of wood and cork",
	"17": "Manufacture of paper and paper products",
	"18": "Printing and reproduction of recorded media",
	"19": "Manufacture of coke and refined petroleum products",
	"20": "Manufacture of chemicals and chemical products",
	"21": "Manufacture of pharmaceuticals, medicinal chemical, and botanical products",
	"22": "Manufacture of rubber and plastics products",
	"23": "Manufacture of other non-metallic mineral products",
	"24": "Manufacture of basic metal",
	"25": "Manufacture of fabricated metal products, except machinery and equipment",
	"26": "Manufacture of computer, electronic and optical products",
	"27": "Manufacture of electrical equipment",
	"28": "Manufacture of machinery and equipment n.e.c",
	"29": "Manufacture of motor vehicles, trailers, and semi-trailers",
	"30": "Manufacture of other transport equipment",
	"31": "Manufacture of furniture",
	"32": "Other manufacturing",
	"33": "Repair and installation of machinery and equipment",
}

// rule matches when any of anyOf occurs, and every one of allOf occurs.
type rule struct {
	code  string
	anyOf []string
	allOf []string
}

func (r rule) match(s string) bool {
	for _, k := range r.allOf {
		if !strings.Contains(s, k) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return len(r.allOf) > 0
	}
	for _, k := range r.anyOf {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// rules are evaluated in order; the first match wins. Broad keywords such as
// "equipment" and "manufacturing" sit late so narrower ones take precedence.
var rules = []rule{
	{code: "10", anyOf: []string{"food", "bakery"}},
	{code: "11", anyOf: []string{"beverage", "brewery"}},
	{code: "12", anyOf: []string{"tobacco"}},
	{code: "13", anyOf: []string{"textile", "cotton", "garment"}},
	{code: "14", anyOf: []string{"wearing apparel", "clothing", "suit"}},
	{code: "15", anyOf: []string{"leather", "footwear"}},
	{code: "16", anyOf: []string{"wood", "timber"}},
	{code: "17", anyOf: []string{"paper", "print"}},
	{code: "18", anyOf: []string{"recorded media"}},
	{code: "19", anyOf: []string{"coke", "petroleum"}},
	{code: "20", anyOf: []string{"chemical"}},
	{code: "21", anyOf: []string{"pharmaceutical", "medicine"}},
	{code: "22", anyOf: []string{"plastic", "rubber"}},
	{code: "23", anyOf: []string{"non-metallic mineral"}},
	{code: "24", allOf: []string{"metal", "basic"}},
	{code: "25", anyOf: []string{"fabricated metal"}},
	{code: "26", anyOf: []string{"computer", "electronic"}},
	{code: "27", anyOf: []string{"electrical equipment"}},
	{code: "28", anyOf: []string{"machinery", "equipment"}},
	{code: "29", anyOf: []string{"motor vehicle", "trailer"}},
	{code: "30", anyOf: []string{"transport equipment"}},
	{code: "31", anyOf: []string{"furniture"}},
	{code: "32", anyOf: []string{"manufacturing"}},
	{code: "33", anyOf: []string{"repair", "installation"}},
}

// Classify returns the NIC division code for an activity description, or
// Unclassified. Matching is case-insensitive substring search.
func Classify(activity string) string {
	s := strings.ToLower(strings.TrimSpace(activity))
	if s == "" {
		return Unclassified
	}
	for _, r := range rules {
		if r.match(s) {
			return r.code
		}
	}
	return Unclassified
}

// Describe returns the division title for code, or "" if unknown.
func Describe(code string) string {
	return Descriptions[code]
}

// Stats counts classification outcomes for one table.
type Stats struct {
	Firms        int
	Classified   int
	Unclassified int
	ByCode       map[string]int
}

// Augment classifies every row's activity column and returns a new table
// with the code column (ColCode when codeCol is empty) and the description
// column set. Existing columns of the same name are overwritten.
func Augment(tbl *table.Table, activityCol, codeCol string) (*table.Table, Stats, error) {
	if codeCol == "" {
		codeCol = ColCode
	}
	activity, err := tbl.Column(activityCol)
	if err != nil {
		return nil, Stats{}, eris.Wrap(err, "industry: activity column")
	}

	stats := Stats{Firms: len(activity), ByCode: make(map[string]int)}
	codes := make([]string, len(activity))
	descs := make([]string, len(activity))
	for i, a := range activity {
		code := Classify(a)
		codes[i] = code
		descs[i] = Describe(code)
		stats.ByCode[code]++
		if code == Unclassified {
			stats.Unclassified++
		} else {
			stats.Classified++
		}
	}

	out, err := tbl.WithColumns(
		table.Column{Name: codeCol, Values: codes},
		table.Column{Name: ColDescription, Values: descs},
	)
	if err != nil {
		return nil, Stats{}, eris.Wrap(err, "industry: append columns")
	}

	zap.L().With(zap.String("component", "industry")).Info("classified firms",
		zap.Int("firms", stats.Firms),
		zap.Int("classified", stats.Classified),
		zap.Int("unclassified", stats.Unclassified),
	)
	return out, stats, nil
}
