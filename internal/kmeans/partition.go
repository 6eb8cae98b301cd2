package kmeans

// Range is a closed-open interval [Start, End) of item indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// partitionIntoRanges splits total items into contiguous ranges, one per worker.
//
// Every range gets total/workers items and the last one also takes the
// remainder. When total < workers each range holds exactly one item, so fewer
// than workers ranges are returned. A total of zero yields no ranges.
func partitionIntoRanges(total, workers int) []Range {
	if total <= 0 || workers <= 0 {
		return nil
	}

	chunk := total / workers
	if chunk == 0 {
		ranges := make([]Range, total)
		for i := range ranges {
			ranges[i] = Range{Start: i, End: i + 1}
		}
		return ranges
	}

	ranges := make([]Range, workers)
	for w := 0; w < workers; w++ {
		end := chunk * (w + 1)
		if w == workers-1 {
			end = total
		}
		ranges[w] = Range{Start: chunk * w, End: end}
	}
	return ranges
}
