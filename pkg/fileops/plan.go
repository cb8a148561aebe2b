package fileops

import "sort"

// Edit requests the replacement of the byte range [Start, End) of a file's
// original content with Replacement. Start == End inserts at Start; an empty
// Replacement deletes the range. Positions always refer to the original
// content, never to intermediate states of a multi-edit application.
type Edit struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Replacement string `json:"replacement"`
}

// Plan validates edits against the original content and returns them ordered
// for safe sequential application: descending by start position, so that
// applying one edit never shifts the offsets of the edits still to come.
//
// Validation is strict and happens before anything is applied: every range
// must satisfy 0 <= start <= end <= len(original), and no two ranges may
// share a byte. Touching ranges (one ends exactly where the next starts) are
// permitted. An empty edit list is a valid plan that leaves the content
// unchanged.
func Plan(original []byte, edits []Edit) ([]Edit, error) {
	length := len(original)

	for _, e := range edits {
		switch {
		case e.Start < 0:
			return nil, &RangeError{Start: e.Start, End: e.End, Length: length, Reason: "start is negative"}
		case e.End < e.Start:
			return nil, &RangeError{Start: e.Start, End: e.End, Length: length, Reason: "end precedes start"}
		case e.End > length:
			return nil, &RangeError{Start: e.Start, End: e.End, Length: length, Reason: "end past end of content"}
		}
	}

	plan := make([]Edit, len(edits))
	copy(plan, edits)
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].Start < plan[j].Start })

	for i := 0; i+1 < len(plan); i++ {
		if plan[i].End > plan[i+1].Start {
			return nil, &OverlapError{First: plan[i], Second: plan[i+1]}
		}
	}

	// Reverse into descending start order for application.
	for i, j := 0, len(plan)-1; i < j; i, j = i+1, j-1 {
		plan[i], plan[j] = plan[j], plan[i]
	}

	return plan, nil
}

// ApplyPlan applies a plan produced by Plan to the original content and
// returns the resulting content. The plan must be in descending start order.
func ApplyPlan(original []byte, plan []Edit) []byte {
	content := make([]byte, len(original))
	copy(content, original)

	for _, e := range plan {
		updated := make([]byte, 0, len(content)-(e.End-e.Start)+len(e.Replacement))
		updated = append(updated, content[:e.Start]...)
		updated = append(updated, e.Replacement...)
		updated = append(updated, content[e.End:]...)
		content = updated
	}

	return content
}
