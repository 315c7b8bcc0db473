package content

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Status is a content row's lifecycle discriminator.
type Status string

const (
	StatusReady             Status = "Ready"
	StatusIngame            Status = "Ingame"
	StatusForImplementation Status = "For Implementation"
	StatusReviseDeployment  Status = "Revise Deployment"
)

// AllStatuses is every status that can ever take part in a full init.
var AllStatuses = []Status{StatusReady, StatusIngame, StatusForImplementation, StatusReviseDeployment}

// ParseStatus maps a status name onto a known Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}

// Selection decides which rows of a table take part in a run. With Indices
// set the run is index-scoped and status is ignored entirely; otherwise only
// rows whose status is in Statuses pass.
type Selection struct {
	Statuses []Status
	Indices  []uint32
}

// ByStatus selects rows by status for a full init.
func ByStatus(statuses ...Status) Selection {
	return Selection{Statuses: statuses}
}

// ByIndex selects exactly the given indices, regardless of status.
func ByIndex(indices ...uint32) Selection {
	if indices == nil {
		indices = []uint32{}
	}
	return Selection{Indices: indices}
}

// Scoped reports whether the selection is an explicit index list.
func (s Selection) Scoped() bool {
	return s.Indices != nil
}

// Includes reports whether a row with the given index and raw status cell
// passes the selection. Statuses outside the known set never pass a status
// selection.
func (s Selection) Includes(index uint32, status string) bool {
	if s.Scoped() {
		return slices.Contains(s.Indices, index)
	}
	st, ok := ParseStatus(status)
	if !ok {
		return false
	}
	return slices.Contains(s.Statuses, st)
}

// ParseIndices parses a comma-separated index list such as "1,2,7".
func ParseIndices(s string) ([]uint32, error) {
	parts := splitList(s)
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", p)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}
