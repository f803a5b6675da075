package errors

import (
	stderrors "errors"
)

// DefaultDetailLimit is how many error details a source summary keeps
const DefaultDetailLimit = 5

// ErrorList accumulates a source's issues, keeping only the first few details.
// It is not safe for concurrent use; each source run owns its own list.
type ErrorList struct {
	limit   int
	count   int
	details []string
}

// NewErrorList creates a list that retains at most limit details
func NewErrorList(limit int) *ErrorList {
	if limit <= 0 {
		limit = DefaultDetailLimit
	}
	return &ErrorList{limit: limit}
}

// Add records err. Render degradations are skipped; callers only log them.
func (l *ErrorList) Add(err error) {
	if err == nil {
		return
	}
	var ce *CampaignError
	if stderrors.As(err, &ce) && !ce.Counted() {
		return
	}
	l.count++
	if len(l.details) < l.limit {
		l.details = append(l.details, err.Error())
	}
}

// Count returns the total number of counted errors, including those past the limit
func (l *ErrorList) Count() int {
	return l.count
}

// Details returns the retained error messages
func (l *ErrorList) Details() []string {
	out := make([]string, len(l.details))
	copy(out, l.details)
	return out
}
