package compare

import "strings"

const (
	// MaxSelection caps how many analyses can be compared side by side.
	MaxSelection = 3
	// MinComparison is the smallest selection that can be compared.
	MinComparison = 2
)

// Selection is an ordered set of analysis ids picked for comparison.
// The zero value is empty and ready to use.
type Selection struct {
	ids []string
}

// ParseSelection reads a comma-separated id list. Blank and repeated ids are
// dropped and anything past MaxSelection is ignored.
func ParseSelection(raw string) Selection {
	var s Selection
	for _, id := range strings.Split(raw, ",") {
		s.Add(strings.TrimSpace(id))
	}
	return s
}

// Add appends id. It reports false when id is blank, already present or the
// selection is full.
func (s *Selection) Add(id string) bool {
	if id == "" || s.Contains(id) || len(s.ids) >= MaxSelection {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove drops id if present.
func (s *Selection) Remove(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Toggle removes id when selected, otherwise tries to add it. It returns
// whether id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.Contains(id) {
		s.Remove(id)
		return false
	}
	return s.Add(id)
}

func (s Selection) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) Len() int { return len(s.ids) }

// IDs returns a copy of the ids in selection order.
func (s Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// CanCompare reports whether enough analyses are selected.
func (s Selection) CanCompare() bool {
	return len(s.ids) >= MinComparison
}

// Query renders the selection as the compare route's query string.
func (s Selection) Query() string {
	return "ids=" + strings.Join(s.ids, ",")
}
