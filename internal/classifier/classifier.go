// Package classifier assigns spend categories to free-text transaction
// descriptions using ordered whole-word keyword rules.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// Rule maps one category to the merchant keywords that identify it.
type Rule struct {
	Category domain.Category
	Keywords []string
}

// DefaultRules is the built-in keyword table in priority order.
// A description matching several categories gets the earliest one.
var DefaultRules = []Rule{
	{domain.CategoryTravel, []string{"IRCTC", "MAKE MY TRIP", "MMT", "UBER", "OLA", "INDIGO", "FLIGHT", "FASTAG", "RAPIDO"}},
	{domain.CategoryDining, []string{"ZOMATO", "SWIGGY", "MCDONALDS", "KFC", "STARBUCKS", "CAFE", "RESTAURANT", "DOMINOS", "GOLA", "SUNBURN"}},
	{domain.CategoryGroceries, []string{"BLINKIT", "ZEPTO", "INSTAMART", "BIGBASKET", "DMART", "RELIANCE SMART", "GROFERS"}},
	{domain.CategoryShopping, []string{"AMAZON", "FLIPKART", "MYNTRA", "AJIO", "ZARA", "SHOPPERS STOP", "CHUMBAK", "ZETWERK"}},
	{domain.CategoryUtilities, []string{"BESCOM", "AIRTEL", "JIO", "RECHARGE", "BILL", "ELECTRICITY", "BWSSB", "CRED"}},
	{domain.CategoryHealth, []string{"PHARMACY", "APOLLO", "HOSPITAL", "CLINIC", "PHYSIO", "1MG", "PRACTO"}},
	{domain.CategoryFuel, []string{"PETROL", "HPCL", "BPCL", "INDIAN OIL", "SHELL", "FUEL"}},
	{domain.CategoryInvestment, []string{"MUTUAL FUND", "SIP", "ZERODHA", "GROWW", "PPFAS", "HDFCMF", "BSE", "NSE"}},
}

type compiledRule struct {
	category domain.Category
	patterns []*regexp.Regexp
}

// Classifier matches descriptions against a fixed rule table.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules    []compiledRule
	fallback domain.Category
}

// Word boundaries count any Unicode letter, digit or underscore as part of a
// word. RE2's \b only knows ASCII, which would let "ÉOLA" match "OLA".
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// New compiles rules into a Classifier. Keywords are upper-cased and matched
// as whole words, so "OLA" does not match "COLA".
func New(rules []Rule) *Classifier {
	c := &Classifier{
		rules:    make([]compiledRule, 0, len(rules)),
		fallback: domain.CategoryRetailOthers,
	}
	for _, r := range rules {
		cr := compiledRule{category: r.Category}
		for _, kw := range r.Keywords {
			kw = strings.ToUpper(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			cr.patterns = append(cr.patterns, regexp.MustCompile(wordStart+regexp.QuoteMeta(kw)+wordEnd))
		}
		c.rules = append(c.rules, cr)
	}
	return c
}

var normalizer = strings.NewReplacer("-", " ", ".", " ")

// Normalize upper-cases a description and turns hyphens and periods into
// spaces so "UPI-OLA" and "WWW.AMAZON.IN" split into words.
func Normalize(description string) string {
	return normalizer.Replace(strings.ToUpper(description))
}

// Classify returns the first category whose keyword appears as a whole word
// in the normalised description, or Retail/Others.
func (c *Classifier) Classify(description string) domain.Category {
	text := Normalize(description)
	if strings.TrimSpace(text) == "" {
		return c.fallback
	}
	for _, r := range c.rules {
		for _, p := range r.patterns {
			if p.MatchString(text) {
				return r.category
			}
		}
	}
	return c.fallback
}

// ClassifyValue classifies an arbitrary value by its string form.
// nil classifies as an empty description.
func (c *Classifier) ClassifyValue(v any) domain.Category {
	switch s := v.(type) {
	case nil:
		return c.Classify("")
	case string:
		return c.Classify(s)
	default:
		return c.Classify(fmt.Sprint(v))
	}
}

// ClassifyAll sets Category on each transaction in place.
func (c *Classifier) ClassifyAll(txs []domain.Transaction) {
	for i := range txs {
		txs[i].Category = c.Classify(txs[i].Description)
	}
}

var defaultClassifier = New(DefaultRules)

// Classify uses the default keyword table.
func Classify(description string) domain.Category {
	return defaultClassifier.Classify(description)
}

// ClassifyValue uses the default keyword table.
func ClassifyValue(v any) domain.Category {
	return defaultClassifier.ClassifyValue(v)
}

// Default returns the classifier built from DefaultRules.
func Default() *Classifier {
	return defaultClassifier
}
