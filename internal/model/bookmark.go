package model

import "time"

// NewBookmarkParams holds parameters for creating a new bookmark node.
type NewBookmarkParams struct {
	ID        string // generated when empty
	Title     string
	URL       string
	Hidden    bool
	DateAdded *time.Time // defaults to now
}

// NewBookmark creates a bookmark node with a generated UUID and timestamp.
func NewBookmark(params NewBookmarkParams) Node {
	id := params.ID
	if id == "" {
		id = GenerateUUID()
	}

	added := time.Now()
	if params.DateAdded != nil {
		added = *params.DateAdded
	}

	return Node{
		Kind:      KindBookmark,
		ID:        id,
		Title:     params.Title,
		URL:       params.URL,
		Hidden:    params.Hidden,
		DateAdded: Millis(added),
	}
}

// Millis converts t to an epoch-millis pointer suitable for Node.DateAdded.
func Millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

// AddedAt returns DateAdded as a time, or the zero time when unknown.
func (n Node) AddedAt() time.Time {
	if n.DateAdded == nil {
		return time.Time{}
	}
	return time.UnixMilli(*n.DateAdded)
}
