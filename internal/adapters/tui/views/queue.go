package views

import "mediasort/internal/domain"

const reviewPageSize = 10

// ReviewQueue holds the files still waiting for a decision in this session,
// paged for display. Skipped files are parked until the reviewer asks for
// them again.
type ReviewQueue struct {
	items    []domain.ReviewItem
	skipped  []domain.ReviewItem
	pageSize int
	offset   int
	cursor   int
}

// NewReviewQueue creates an empty queue showing pageSize files per page
func NewReviewQueue(pageSize int) *ReviewQueue {
	if pageSize <= 0 {
		pageSize = reviewPageSize
	}
	return &ReviewQueue{pageSize: pageSize}
}

// Load replaces the queue and forgets parked files
func (q *ReviewQueue) Load(items []domain.ReviewItem) {
	q.items = append([]domain.ReviewItem(nil), items...)
	q.skipped = nil
	q.cursor = 0
	q.offset = 0
}

// Len returns the number of files still in the queue
func (q *ReviewQueue) Len() int {
	return len(q.items)
}

// SkippedCount returns the number of parked files
func (q *ReviewQueue) SkippedCount() int {
	return len(q.skipped)
}

// Cursor returns the absolute index of the selected file
func (q *ReviewQueue) Cursor() int {
	return q.cursor
}

// Current returns the selected file
func (q *ReviewQueue) Current() (domain.ReviewItem, bool) {
	if q.cursor < 0 || q.cursor >= len(q.items) {
		return domain.ReviewItem{}, false
	}
	return q.items[q.cursor], true
}

// Up selects the previous file
func (q *ReviewQueue) Up() {
	if q.cursor > 0 {
		q.cursor--
		q.follow()
	}
}

// Down selects the next file
func (q *ReviewQueue) Down() {
	if q.cursor < len(q.items)-1 {
		q.cursor++
		q.follow()
	}
}

// NextPage selects the first file of the next page
func (q *ReviewQueue) NextPage() {
	if q.offset+q.pageSize < len(q.items) {
		q.offset += q.pageSize
		q.cursor = q.offset
	}
}

// PrevPage selects the first file of the previous page
func (q *ReviewQueue) PrevPage() {
	if q.offset > 0 {
		q.offset = max(q.offset-q.pageSize, 0)
		q.cursor = q.offset
	}
}

// Page returns the files on the current page
func (q *ReviewQueue) Page() []domain.ReviewItem {
	end := min(q.offset+q.pageSize, len(q.items))
	if q.offset >= end {
		return nil
	}
	return q.items[q.offset:end]
}

// PageStart returns the absolute index of the first file on the page
func (q *ReviewQueue) PageStart() int {
	return q.offset
}

// Pages returns the 1-based current page and the page count
func (q *ReviewQueue) Pages() (current, total int) {
	total = max((len(q.items)+q.pageSize-1)/q.pageSize, 1)
	return q.offset/q.pageSize + 1, total
}

// Resolve drops decided files from the queue and returns how many were
// found. The selection stays on the same file when it survives, else moves
// to the file that took its place.
func (q *ReviewQueue) Resolve(fileIDs ...string) int {
	decided := make(map[string]bool, len(fileIDs))
	for _, id := range fileIDs {
		decided[id] = true
	}

	kept := q.items[:0]
	removed, cursor := 0, q.cursor
	for i, item := range q.items {
		if decided[item.FileID] {
			removed++
			if i < q.cursor {
				cursor--
			}
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	q.cursor = cursor
	q.clamp()
	return removed
}

// Skip parks the selected file
func (q *ReviewQueue) Skip() bool {
	item, ok := q.Current()
	if !ok {
		return false
	}
	q.skipped = append(q.skipped, item)
	return q.Resolve(item.FileID) == 1
}

// Requeue moves parked files to the end of the queue and returns how many
func (q *ReviewQueue) Requeue() int {
	n := len(q.skipped)
	q.items = append(q.items, q.skipped...)
	q.skipped = nil
	q.clamp()
	return n
}

func (q *ReviewQueue) clamp() {
	if q.cursor >= len(q.items) {
		q.cursor = len(q.items) - 1
	}
	if q.cursor < 0 {
		q.cursor = 0
	}
	q.follow()
}

// follow moves the page so the selection is visible
func (q *ReviewQueue) follow() {
	if q.cursor < q.offset || q.cursor >= q.offset+q.pageSize {
		q.offset = (q.cursor / q.pageSize) * q.pageSize
	}
}
