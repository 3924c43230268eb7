package reconcile

import (
	"math"
	"slices"
	"strings"

	"github.com/jbrukh/bayesian"

	"github.com/vouchrit/tally/tally/snapshot"
)

// confidenceGap is how far, in log score, the best class must lead the
// runner-up before a prediction is trusted.
const confidenceGap = 10

// Suggester picks the party ledger for a statement narration. Names that
// appear in the narration win outright; otherwise a naive Bayes classifier
// trained on earlier postings is consulted.
type Suggester struct {
	parties    []string
	classifier *bayesian.Classifier
}

// NewSuggester trains on the successful entries of history. parties is the
// list of candidate ledgers, usually the party ledgers of the company.
func NewSuggester(parties []string, history []snapshot.HistoryEntry) *Suggester {
	s := &Suggester{}
	seen := map[string]bool{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		s.parties = append(s.parties, name)
	}
	for _, p := range parties {
		add(p)
	}
	for _, h := range history {
		if h.Success {
			add(h.Request.PartyLedger)
		}
	}
	// the classifier needs at least two distinct classes
	if len(s.parties) < 2 {
		return s
	}

	classes := make([]bayesian.Class, len(s.parties))
	for i, p := range s.parties {
		classes[i] = bayesian.Class(p)
	}
	s.classifier = bayesian.NewClassifier(classes...)
	for _, p := range s.parties {
		s.classifier.Learn(words(p), bayesian.Class(p))
	}
	for _, h := range history {
		if h.Success && strings.TrimSpace(h.Request.PartyLedger) != "" {
			s.classifier.Learn(words(h.Request.Narration), bayesian.Class(strings.TrimSpace(h.Request.PartyLedger)))
		}
	}
	return s
}

// Parties returns the candidate ledgers.
func (s *Suggester) Parties() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.parties)
}

// Suggest returns the party ledger for narration, or false when no candidate
// is a confident match.
func (s *Suggester) Suggest(narration string) (string, bool) {
	if s == nil {
		return "", false
	}
	lower := strings.ToLower(narration)
	best := ""
	for _, p := range s.parties {
		if strings.Contains(lower, strings.ToLower(p)) && len(p) > len(best) {
			best = p
		}
	}
	if best != "" {
		return best, true
	}
	if s.classifier == nil {
		return "", false
	}
	w := words(narration)
	if len(w) == 0 {
		return "", false
	}

	high1, high2 := math.Inf(-1), math.Inf(-1)
	idx := 0
	scores, _, _ := s.classifier.LogScores(w)
	for j, score := range scores {
		switch {
		case score > high1:
			high2 = high1
			high1 = score
			idx = j
		case score > high2:
			high2 = score
		}
	}
	if high1-high2 > confidenceGap {
		return string(s.classifier.Classes[idx]), true
	}
	return "", false
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
