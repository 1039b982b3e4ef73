// Package chat answers free-text questions about a card catalog and an
// optimized statement. Routing is keyword based and deterministic.
package chat

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/rewards"
)

// Intent names the kind of question a message was routed to.
type Intent string

const (
	IntentExit       Intent = "exit"
	IntentMissed     Intent = "missed_savings"
	IntentSavings    Intent = "total_savings"
	IntentTop        Intent = "top_spends"
	IntentLogic      Intent = "logic"
	IntentPerk       Intent = "perk"
	IntentWaiver     Intent = "fee_waiver"
	IntentRenewalFee Intent = "renewal_fee"
	IntentJoiningFee Intent = "joining_fee"
	IntentCategory   Intent = "category_roi"
	IntentHelp       Intent = "help"
)

// Line is one row of a list answer.
type Line struct {
	Card   string `json:"card"`
	Detail string `json:"detail"`
}

// Reply is the agent's answer to one message.
type Reply struct {
	Intent          Intent                   `json:"intent"`
	Text            string                   `json:"text"`
	Rows            []Line                   `json:"rows,omitempty"`
	Recommendations []rewards.Recommendation `json:"recommendations,omitempty"`
	Done            bool                     `json:"done,omitempty"`
}

// Agent holds a catalog and, optionally, the report for one statement.
// It is safe for concurrent use since it never mutates its state.
type Agent struct {
	cards  []domain.CardRecord
	report *rewards.Report
}

// NewAgent creates an agent. report may be nil when no statement has been
// analysed; statement questions then answer that nothing is loaded.
func NewAgent(cards []domain.CardRecord, report *rewards.Report) *Agent {
	cp := make([]domain.CardRecord, len(cards))
	copy(cp, cards)
	return &Agent{cards: cp, report: report}
}

type perkField struct {
	keywords []string
	title    string
	value    func(c domain.CardRecord) string
}

var perkFields = []perkField{
	{[]string{"network"}, "Card Network", func(c domain.CardRecord) string { return c.Network }},
	{[]string{"golf"}, "Golf Privileges", func(c domain.CardRecord) string { return c.PerkGolf }},
	{[]string{"movie"}, "Movie Benefits", func(c domain.CardRecord) string { return c.PerkMovies }},
	{[]string{"lounge", "longue"}, "Lounge Access", func(c domain.CardRecord) string { return c.LoungeDomestic }},
	{[]string{"expiry", "expire"}, "Reward Expiry Rules", func(c domain.CardRecord) string { return c.RewardExpiry }},
	{[]string{"taj", "tie"}, "Special Brand Tie-ups", func(c domain.CardRecord) string { return c.BenefitSpecialTieups }},
	{[]string{"milestone", "miletsone"}, "Milestone Benefits", func(c domain.CardRecord) string { return c.BenefitMilestones }},
	{[]string{"welcome", "wlecome"}, "Welcome Benefits", func(c domain.CardRecord) string { return c.BenefitWelcome }},
	{[]string{"other"}, "Miscellaneous Benefits", func(c domain.CardRecord) string { return c.PerkOthers }},
}

// roiTargets maps a multiplier key to the words that select it, in
// priority order.
var roiTargets = []struct {
	key      string
	category domain.Category
	words    []string
}{
	{"dining", domain.CategoryDining, []string{"dining", "food", "dinig"}},
	{"international", domain.CategoryTravel, []string{"international", "abroad", "foreign", "intetnational"}},
	{"domestic", domain.CategoryTravel, []string{"domestic", "india", "local"}},
	{"travel", domain.CategoryTravel, []string{"travel", "trip", "flight"}},
	{"utilities", domain.CategoryUtilities, []string{"utility", "utilities", "bill"}},
	{"shopping", domain.CategoryShopping, []string{"shopping", "amazon", "online", "reward system", "highest reward"}},
}

var (
	exitWords    = []string{"exit", "quit", "bye", "close"}
	missedWords  = []string{"optimize", "highlight", "missed", "past"}
	savingsWords = []string{"save", "total", "savings"}
	topWords     = []string{"top", "show"}
	logicWords   = []string{"logic", "how"}
	waiverWords  = []string{"waive", "waiver", "less spend"}
	renewalWords = []string{"renewal", "renwal"}
	joiningWords = []string{"fee", "joining", "cheap", "free"}
	rewardWords  = []string{"reward"}

	absentValue = regexp.MustCompile(`(?i)\b(no|none)\b`)
)

const helpText = "I can answer questions about your statement and the card catalog. Try:\n" +
	"  - 'total savings' or 'top spends'\n" +
	"  - 'missed savings' for the ten biggest wins\n" +
	"  - 'golf', 'movies', 'lounge', 'taj tie-ups', 'milestones', 'expiry'\n" +
	"  - 'fee waiver', 'lowest renewal fee', 'cheapest joining fee'\n" +
	"  - 'dining', 'travel', 'international', 'utilities', 'shopping'\n" +
	"  - 'your logic'\n" +
	"Type 'exit' to quit."

// Respond routes message to the first matching intent and answers it.
func (a *Agent) Respond(message string) Reply {
	msg := strings.ToLower(strings.TrimSpace(message))

	for _, w := range exitWords {
		if msg == w {
			return Reply{Intent: IntentExit, Text: "Goodbye! Keep optimizing.", Done: true}
		}
	}

	switch {
	case matchAny(msg, missedWords):
		return a.missedSavings()
	case matchAny(msg, savingsWords):
		return a.totalSavings()
	case matchAny(msg, topWords):
		return a.topSpends()
	case matchAny(msg, logicWords):
		return logicReply()
	}

	for _, p := range perkFields {
		if !matchAny(msg, p.keywords) {
			continue
		}
		if r, ok := a.perkLookup(p); ok {
			return r
		}
	}

	switch {
	case matchAny(msg, waiverWords):
		return a.waivers()
	case matchAny(msg, renewalWords):
		return a.lowestFee(IntentRenewalFee, "Renewal Fee", func(c domain.CardRecord) float64 { return c.RenewalFee })
	case matchAny(msg, joiningWords):
		return a.lowestFee(IntentJoiningFee, "Joining Fee", func(c domain.CardRecord) float64 { return c.JoiningFee })
	}

	for _, t := range roiTargets {
		if matchAny(msg, t.words) {
			if r, ok := a.categoryROI(t.key, t.category); ok {
				return r
			}
			return helpReply()
		}
	}
	if matchAny(msg, rewardWords) {
		if r, ok := a.categoryROI("shopping", domain.CategoryShopping); ok {
			return r
		}
	}

	return helpReply()
}

func helpReply() Reply {
	return Reply{Intent: IntentHelp, Text: helpText}
}

func logicReply() Reply {
	return Reply{
		Intent: IntentLogic,
		Text: "I don't guess. Every answer comes from a deterministic calculation:\n" +
			"1. Each spend is classified into a category by keyword rules.\n" +
			"2. Each card's reward rules (spend per point, category multipliers, point value in INR) come from the catalog.\n" +
			"3. Every spend is simulated on every card and the highest INR return wins.",
	}
}

func (a *Agent) noStatement(intent Intent) Reply {
	return Reply{Intent: intent, Text: "No statement has been analysed yet."}
}

func (a *Agent) missedSavings() Reply {
	if a.report == nil {
		return a.noStatement(IntentMissed)
	}
	top := rewards.TopBySavings(a.report.Recommendations, 10)
	return Reply{
		Intent:          IntentMissed,
		Text:            "These spends would have earned the most on a different card:",
		Rows:            recommendationLines(top),
		Recommendations: top,
	}
}

func (a *Agent) totalSavings() Reply {
	if a.report == nil {
		return a.noStatement(IntentSavings)
	}
	return Reply{
		Intent: IntentSavings,
		Text: fmt.Sprintf("Your total optimized savings are %s. "+
			"This compares base rates and category multipliers across every card in the catalog.",
			formatINR(a.report.TotalSavings)),
	}
}

func (a *Agent) topSpends() Reply {
	if a.report == nil {
		return a.noStatement(IntentTop)
	}
	top := rewards.TopBySavings(a.report.Recommendations, 5)
	return Reply{
		Intent:          IntentTop,
		Text:            "Here are your top 5 optimized transactions and the card to use for each:",
		Rows:            recommendationLines(top),
		Recommendations: top,
	}
}

func recommendationLines(recs []rewards.Recommendation) []Line {
	lines := make([]Line, len(recs))
	for i, r := range recs {
		lines[i] = Line{
			Card: r.RecommendedCard,
			Detail: fmt.Sprintf("%s | %s | %s spent | saves %s",
				shorten(r.Transaction.Description, 30), r.Transaction.Category,
				formatINR(r.Transaction.Amount), formatINR(r.SavedINR)),
		}
	}
	return lines
}

// perkLookup lists cards whose field has a value other than "no" or "none".
// ok is false when no card qualifies.
func (a *Agent) perkLookup(p perkField) (Reply, bool) {
	var rows []Line
	for _, c := range a.cards {
		v := strings.TrimSpace(p.value(c))
		if v == "" || absentValue.MatchString(v) {
			continue
		}
		rows = append(rows, Line{Card: c.DisplayName(), Detail: v})
	}
	if len(rows) == 0 {
		return Reply{}, false
	}
	return Reply{Intent: IntentPerk, Text: fmt.Sprintf("Catalog results for %s:", p.title), Rows: rows}, true
}

func (a *Agent) waivers() Reply {
	var cards []domain.CardRecord
	for _, c := range a.cards {
		if c.WaiverSpendLimit > 0 {
			cards = append(cards, c)
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].WaiverSpendLimit < cards[j].WaiverSpendLimit
	})

	rows := make([]Line, len(cards))
	for i, c := range cards {
		rows[i] = Line{
			Card:   c.DisplayName(),
			Detail: fmt.Sprintf("Waived at %s annual spend.", formatINRWhole(c.WaiverSpendLimit)),
		}
	}
	return Reply{Intent: IntentWaiver, Text: "Spend-based fee waivers (lowest first):", Rows: rows}
}

// lowestFee picks the card with the smallest fee; the first card wins ties.
func (a *Agent) lowestFee(intent Intent, label string, fee func(domain.CardRecord) float64) Reply {
	best := -1
	for i, c := range a.cards {
		if math.IsNaN(fee(c)) {
			continue
		}
		if best < 0 || fee(c) < fee(a.cards[best]) {
			best = i
		}
	}
	if best < 0 {
		return Reply{Intent: intent, Text: "The card catalog is empty."}
	}
	c := a.cards[best]
	return Reply{
		Intent: intent,
		Text:   fmt.Sprintf("For the lowest %s, the %s is the winner at %s.", label, c.DisplayName(), formatINR(fee(c))),
	}
}

// ROI returns a card's percentage return on a spend in the multiplier
// category key: multiplier / spend unit * point value * 100. International
// and domestic spends use the card's travel multiplier when they have no
// rate of their own. A spend unit of 0 is read as 100. ok is false for
// malformed cards and unreadable multipliers.
func ROI(c domain.CardRecord, key string) (float64, bool) {
	if c.Malformed() {
		return 0, false
	}

	mult := domain.DefaultMultiplier
	m, found := c.Multiplier(key)
	if !found && (key == "international" || key == "domestic") {
		m, found = c.Multiplier("travel")
	}
	if found {
		if !m.Valid {
			return 0, false
		}
		mult = m.Value
	}

	unit := c.SpendsPerRewardUnit
	if unit == 0 {
		unit = 100
	}
	roi := mult / unit * c.UnifiedRewardValueINR * 100
	if math.IsNaN(roi) || math.IsInf(roi, 0) {
		return 0, false
	}
	return roi, true
}

func (a *Agent) categoryROI(key string, cat domain.Category) (Reply, bool) {
	best, bestROI := -1, -1.0
	for i, c := range a.cards {
		roi, ok := ROI(c, key)
		if ok && roi > bestROI {
			best, bestROI = i, roi
		}
	}
	if best < 0 {
		return Reply{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Best card for %s: the %s returns %s%%.",
		capitalize(key), a.cards[best].DisplayName(), formatAmount(bestROI))

	if a.report != nil {
		card, n := rewards.MostRecommendedCard(a.report.Recommendations, cat)
		if n == 0 {
			fmt.Fprintf(&b, " No %s spends were found in your statement.", strings.ToLower(string(cat)))
		} else {
			fmt.Fprintf(&b, " You had %d %s spends; the card recommended most often for them is %s.",
				n, strings.ToLower(string(cat)), card)
		}
	}

	return Reply{
		Intent: IntentCategory,
		Text:   b.String(),
		Rows:   []Line{{Card: a.cards[best].DisplayName(), Detail: formatAmount(bestROI) + "% return"}},
	}, true
}

var wordPatterns = map[string]*regexp.Regexp{}

func init() {
	groups := [][]string{
		missedWords, savingsWords, topWords, logicWords,
		waiverWords, renewalWords, joiningWords, rewardWords,
	}
	for _, p := range perkFields {
		groups = append(groups, p.keywords)
	}
	for _, t := range roiTargets {
		groups = append(groups, t.words)
	}
	for _, g := range groups {
		for _, w := range g {
			wordPatterns[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w))
		}
	}
}

// matchAny reports whether any keyword starts a word in msg.
func matchAny(msg string, words []string) bool {
	for _, w := range words {
		if wordPatterns[w].MatchString(msg) {
			return true
		}
	}
	return false
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
