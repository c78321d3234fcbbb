package schedule

import "strings"

// Classifier assigns a tier to a subject name using a difficulty table.
// A nil table always yields TierEasy.
type Classifier interface {
	Classify(subject string, table *DifficultyTable) Tier
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(subject string, table *DifficultyTable) Tier

func (f ClassifierFunc) Classify(subject string, table *DifficultyTable) Tier {
	return f(subject, table)
}

// SubstringClassifier returns the tier of the first entry, in insertion order,
// whose fragment occurs in the subject name. Overlapping fragments resolve by
// table order.
var SubstringClassifier = ClassifierFunc(func(subject string, table *DifficultyTable) Tier {
	if table == nil {
		return TierEasy
	}
	name := Fold(subject)
	for _, e := range table.Entries {
		if strings.Contains(name, Fold(e.Fragment)) {
			return e.Tier
		}
	}
	return TierEasy
})

// ExactClassifier matches only when the whole trimmed name equals a fragment.
var ExactClassifier = ClassifierFunc(func(subject string, table *DifficultyTable) Tier {
	if tier, ok := table.Get(strings.TrimSpace(Fold(subject))); ok {
		return tier
	}
	return TierEasy
})

// LongestMatchClassifier prefers the longest fragment contained in the name;
// equal lengths fall back to table order.
var LongestMatchClassifier = ClassifierFunc(func(subject string, table *DifficultyTable) Tier {
	if table == nil {
		return TierEasy
	}
	name := Fold(subject)
	best, bestLen := TierEasy, -1
	for _, e := range table.Entries {
		frag := Fold(e.Fragment)
		if len(frag) > bestLen && strings.Contains(name, frag) {
			best, bestLen = e.Tier, len(frag)
		}
	}
	return best
})

// ClassifierByName resolves "substring", "exact" or "longest".
func ClassifierByName(name string) (Classifier, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "substring":
		return SubstringClassifier, true
	case "exact":
		return ExactClassifier, true
	case "longest":
		return LongestMatchClassifier, true
	default:
		return nil, false
	}
}

// Classify applies c to every subject, returning a new slice.
func Classify(c Classifier, subjects []Subject, table *DifficultyTable) []Subject {
	out := make([]Subject, len(subjects))
	for i, s := range subjects {
		s.Difficulty = c.Classify(s.Name, table)
		out[i] = s
	}
	return out
}
