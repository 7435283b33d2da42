package domain

import (
	"time"
)

// SearchEvent describes the boundaries of one search.
type SearchEvent struct {
	Timestamp time.Time
	Request   SearchRequest
	Result    *SearchResult // nil on start
	Err       error         // set on finish when the search failed
	Duration  time.Duration // set on finish
}

// SearchHooks defines callbacks for engine observability.
// Hooks run synchronously on the search goroutine and must not block.
type SearchHooks struct {
	OnStart     func(*SearchEvent)
	OnIteration func(IterationRecord)
	OnFinish    func(*SearchEvent)
}

// Merge returns hooks that call h first and then other.
func (h SearchHooks) Merge(other SearchHooks) SearchHooks {
	return SearchHooks{
		OnStart:     chainEvent(h.OnStart, other.OnStart),
		OnIteration: chainIteration(h.OnIteration, other.OnIteration),
		OnFinish:    chainEvent(h.OnFinish, other.OnFinish),
	}
}

func chainEvent(a, b func(*SearchEvent)) func(*SearchEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e *SearchEvent) {
		a(e)
		b(e)
	}
}

func chainIteration(a, b func(IterationRecord)) func(IterationRecord) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(r IterationRecord) {
		a(r)
		b(r)
	}
}
