package measure

import "github.com/clinbench/goldtruth/internal/record"

// NumeratorEvent scans the numerator-coded events whose date falls within
// the inclusive lookback window and deterministically selects the cited
// evidence: the most recent qualifying event, with date ties broken by
// original record order (the first-recorded event of the latest date
// wins). Repeated runs against identical input always cite the same
// event.
//
// Returns ok=false if no event qualifies.
func (e *Evaluator) NumeratorEvent(p *record.Patient, w Window) (best record.Event, ok bool) {
	for ev := range p.EventsMatching(e.numerator) {
		if !w.Contains(ev.Date) {
			continue
		}
		// Strictly-after keeps the earlier-recorded event on a date tie.
		if !ok || ev.Date.After(best.Date) {
			best = ev
			ok = true
		}
	}
	return best, ok
}
