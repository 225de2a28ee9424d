package store

// DefaultPageSize is the history page length the backend serves.
const DefaultPageSize = 10

// Cursor tracks backfill pagination for the open conversation.
// Page is 1-based; page 1 is loaded by the conversation switch itself.
type Cursor struct {
	Page     int
	PageSize int
	HasMore  bool
}

// NewCursor returns a cursor positioned at the first page.
func NewCursor(pageSize int) Cursor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Cursor{Page: 1, PageSize: pageSize, HasMore: true}
}

// Reset returns the cursor to its initial position, keeping the page
// size. Called whenever the selected conversation changes.
func (c *Cursor) Reset() {
	c.Page = 1
	c.HasMore = true
}

// Advance records a served page: the page number the results belong to
// and whether a further page may exist.
func (c *Cursor) Advance(page, returned int) {
	c.Page = page
	if returned < c.PageSize {
		c.HasMore = false
	}
}
