package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"college-scraper/models"
	"college-scraper/utils"
)

// Generic words that carry no identity signal in institution names.
var nameStopwords = map[string]struct{}{
	"university": {}, "college": {}, "institute": {}, "school": {},
	"of": {}, "the": {}, "at": {}, "state": {}, "and": {}, "for": {},
}

// stateAbbr maps full US state names to their two-letter abbreviations,
// used to filter search cards whose location is obviously wrong (a
// "Florida" school should not match a card located in "Bayamon, PR").
var stateAbbr = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND",
	"ohio": "OH", "oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA",
	"rhode island": "RI", "south carolina": "SC", "south dakota": "SD",
	"tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

// Matcher decides whether remote search results refer to a locally known
// school. All methods are pure over their inputs; the same (identity,
// candidate) pair always yields the same answer.
type Matcher struct {
	logger *utils.Logger
}

// NewMatcher creates a Matcher with the given logger.
func NewMatcher(logger *utils.Logger) *Matcher {
	return &Matcher{logger: logger}
}

// NameTokens normalizes a school name for fuzzy comparison: lower-case,
// "&" → "and", punctuation stripped, whitespace-tokenized, stopwords
// removed.
func NameTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	if name == "" {
		return tokens
	}

	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "&", " and ")

	var b strings.Builder
	for _, r := range name {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}

	for _, tok := range strings.Fields(b.String()) {
		if _, stop := nameStopwords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// Jaccard returns intersection size over union size of two token sets.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	overlap := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

// NamesMatch is the fuzzy name rule used against the ratings site:
// token-set equality, local-subset-of-candidate, Jaccard >= 0.6, or the
// explicit Virginia Tech aliases. The trailing virginia+tech token rule
// is a known over-match risk but kept for parity with the source data.
func NamesMatch(localName, candidateName string) bool {
	if localName == "" || candidateName == "" {
		return false
	}

	localLower := strings.ToLower(localName)
	candLower := strings.ToLower(candidateName)

	if strings.Contains(localLower, "virginia polytechnic") && strings.Contains(candLower, "virginia tech") {
		return true
	}
	if strings.Contains(localLower, "virginia tech") && strings.Contains(candLower, "virginia polytechnic") {
		return true
	}

	localTokens := NameTokens(localName)
	candTokens := NameTokens(candidateName)
	if len(localTokens) == 0 || len(candTokens) == 0 {
		return false
	}

	if tokensEqual(localTokens, candTokens) {
		return true
	}
	if isSubset(localTokens, candTokens) {
		return true
	}
	if Jaccard(localTokens, candTokens) >= 0.6 {
		return true
	}

	// Last-resort fallback, weaker than the alias rules above.
	if _, ok := localTokens["virginia"]; ok {
		if _, ok := candTokens["tech"]; ok {
			return true
		}
	}

	return false
}

// CityMatches is the exact-city rule used against the static site. State
// is deliberately ignored; the source data's state field is unreliable.
func CityMatches(localCity, candidateCity string) bool {
	return normalizeCity(localCity) != "" &&
		normalizeCity(localCity) == normalizeCity(candidateCity)
}

// LocationMatchesState reports whether a card's free-form location text
// plausibly belongs to the given state, by full name or abbreviation.
func LocationMatchesState(state, locText string) bool {
	if state == "" || locText == "" {
		return false
	}

	stateNorm := strings.ToLower(strings.TrimSpace(state))
	locLower := strings.ToLower(locText)

	if strings.Contains(locLower, stateNorm) {
		return true
	}
	if abbr, ok := stateAbbr[stateNorm]; ok {
		return strings.Contains(locLower, strings.ToLower(abbr))
	}
	return false
}

// FilterByState keeps only candidates whose location matches the local
// state. If that would leave nothing, the filter is discarded and the
// full pool is returned — the match step must never see an artificially
// empty pool.
func (m *Matcher) FilterByState(identity models.SchoolIdentity, candidates []*models.RawCandidate) []*models.RawCandidate {
	var kept []*models.RawCandidate
	for _, c := range candidates {
		if LocationMatchesState(identity.State, c.Location) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		m.logger.Info("[matcher] %s: no candidates matched state %q, falling back to all %d",
			identity.Name, identity.State, len(candidates))
		return candidates
	}
	m.logger.Info("[matcher] %s: %d/%d candidates pass the state filter",
		identity.Name, len(kept), len(candidates))
	return kept
}

// OrderCandidates sorts candidates by descending review count, the proxy
// for "most likely canonical page". Ties fall back to Jaro-Winkler
// similarity against the local name.
func (m *Matcher) OrderCandidates(identity models.SchoolIdentity, candidates []*models.RawCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ReviewCount != candidates[j].ReviewCount {
			return candidates[i].ReviewCount > candidates[j].ReviewCount
		}
		si := matchr.JaroWinkler(identity.Name, candidates[i].Name, false)
		sj := matchr.JaroWinkler(identity.Name, candidates[j].Name, false)
		return si > sj
	})
}

// MatchByCity picks the candidate whose city exactly equals the local
// city. If none matches and exactly one candidate exists, that single
// entry is accepted as weak evidence.
func (m *Matcher) MatchByCity(identity models.SchoolIdentity, candidates []*models.RawCandidate) *models.RawCandidate {
	for _, c := range candidates {
		if CityMatches(identity.City, c.City) {
			return c
		}
	}
	if len(candidates) == 1 {
		m.logger.Warn("[matcher] %s: no city match, accepting the only result %q",
			identity.Name, candidates[0].Name)
		return candidates[0]
	}
	return nil
}

func normalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tokensEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	return isSubset(a, b)
}

func isSubset(sub, super map[string]struct{}) bool {
	for tok := range sub {
		if _, ok := super[tok]; !ok {
			return false
		}
	}
	return true
}
