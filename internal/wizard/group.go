package wizard

import "strings"

// Group classifies a cluster during manual review.
type Group string

const (
	GroupUnsorted Group = "unsorted"
	GroupGood     Group = "good"
	GroupIgnored  Group = "ignored"
)

var allGroups = []Group{
	GroupUnsorted,
	GroupGood,
	GroupIgnored,
}

var groupSet = func() map[Group]struct{} {
	set := make(map[Group]struct{}, len(allGroups))
	for _, group := range allGroups {
		set[group] = struct{}{}
	}
	return set
}()

// AllGroups returns the ordered list of known review groups.
func AllGroups() []Group {
	cp := make([]Group, len(allGroups))
	copy(cp, allGroups)
	return cp
}

// ParseGroup converts a string into a known Group.
func ParseGroup(value string) (Group, bool) {
	normalized := Group(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := groupSet[normalized]
	return normalized, ok
}

// Processed reports whether the group marks a cluster as already reviewed.
// Good and ignored clusters count toward review progress; unsorted do not.
func (g Group) Processed() bool {
	return g == GroupGood || g == GroupIgnored
}
