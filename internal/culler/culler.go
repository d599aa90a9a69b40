// Package culler finds bookmarks whose links no longer resolve.
package culler

import "github.com/nikbrunner/bmsync/internal/model"

// Status is the outcome of checking one link.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx
	Dead                      // 404 or 410
	Unreachable               // no usable answer: network errors, 5xx, 403, excluded hosts
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	}
	return "unreachable"
}

// Result is the check outcome for one bookmark.
type Result struct {
	Bookmark   *model.Node
	Path       string
	Status     Status
	StatusCode int    // 0 when no response arrived
	Error      string // readable reason for Unreachable
}

// Tally counts results per status.
type Tally struct {
	Healthy, Dead, Unreachable int
}

// Count tallies results.
func Count(results []Result) Tally {
	var t Tally
	for _, r := range results {
		switch r.Status {
		case Healthy:
			t.Healthy++
		case Dead:
			t.Dead++
		default:
			t.Unreachable++
		}
	}
	return t
}

// DeadIDs returns the ids of dead bookmarks. Bookmarks without an id
// cannot be addressed and are left out.
func DeadIDs(results []Result) []string {
	var ids []string
	for _, r := range results {
		if r.Status == Dead && r.Bookmark != nil && r.Bookmark.ID != "" {
			ids = append(ids, r.Bookmark.ID)
		}
	}
	return ids
}
