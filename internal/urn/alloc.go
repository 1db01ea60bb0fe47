package urn

import (
	"fmt"
	"regexp"
)

var allocIDRe = regexp.MustCompile(`^([DLPCEMYRK])(\d{3})$`)

// Allocator hands out the next step-coded WMBT id for one manifest's id
// space. It is a plain value owned by whoever loaded the manifest; callers
// thread it through explicitly instead of keying shared state off manifest
// identity.
type Allocator struct {
	counters map[string]int
}

// NewAllocator seeds an allocator from the step-coded ids already present
// in a manifest. Non-conforming ids are ignored.
func NewAllocator(existingIDs []string) *Allocator {
	counters := make(map[string]int)
	for _, id := range existingIDs {
		m := allocIDRe.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		step := m[1]
		var n int
		fmt.Sscanf(m[2], "%d", &n)
		if n > counters[step] {
			counters[step] = n
		}
	}
	return &Allocator{counters: counters}
}

// Next returns the next unused id for a step (code letter or name),
// incrementing the allocator's counter for that step.
func (a *Allocator) Next(step string) (string, error) {
	code, err := NormalizeStep(step)
	if err != nil {
		return "", err
	}
	current := a.counters[code]
	if current >= 999 {
		return "", fmt.Errorf("no remaining ids for step %s", step)
	}
	a.counters[code] = current + 1
	return fmt.Sprintf("%s%03d", code, current+1), nil
}
