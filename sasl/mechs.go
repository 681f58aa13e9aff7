package sasl

import "strings"

// maxMechs caps the number of mechanisms advertised in one frame. The cap
// fails closed: surplus mechanisms are dropped with a logged error, never
// silently truncated mid-name.
const maxMechs = 16

// wordInList reports whether word matches one of the space-separated words
// in list, ignoring case. A word containing a space can never match.
func wordInList(list, word string) bool {
	for _, w := range strings.Fields(list) {
		if strings.EqualFold(w, word) {
			return true
		}
	}
	return false
}

// mechIncluded reports whether the allow-list admits mech. An absent list
// admits everything.
func (s *Sasl) mechIncluded(mech string) bool {
	if !s.restricted {
		return true
	}
	return wordInList(s.included, mech)
}

// splitMechs tokenizes a provider mechanism list and filters it through
// the allow-list, capped at maxMechs.
func (s *Sasl) splitMechs(mechlist string) []string {
	var out []string
	for _, mech := range strings.Fields(mechlist) {
		if !s.mechIncluded(mech) {
			continue
		}
		if len(out) == maxMechs {
			s.transport.Logger().Error("mechanism list overflow, dropping surplus mechanisms",
				"transport", s.transport.ID(), "limit", maxMechs)
			break
		}
		out = append(out, mech)
	}
	return out
}
