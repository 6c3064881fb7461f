package folding

import "sort"

// dedupeAndSort merges ranges that cover the same line pair and imposes
// the final deterministic order. Two matchers can legitimately claim the
// same (start, end) lines with different character offsets; the merged
// range keeps the semantic kind over the generic one, the earliest start
// character, and the latest end character. Ordering is independent of the
// order the matchers ran in.
func dedupeAndSort(ranges []Range) []Range {
	if len(ranges) == 0 {
		return ranges
	}

	type lineKey struct {
		start, end uint32
	}
	merged := make(map[lineKey]Range, len(ranges))
	for _, r := range ranges {
		key := lineKey{r.StartLine, r.EndLine}
		prev, ok := merged[key]
		if !ok {
			merged[key] = r
			continue
		}
		if prev.Kind == "" {
			prev.Kind = r.Kind
		}
		if r.StartCharacter < prev.StartCharacter {
			prev.StartCharacter = r.StartCharacter
		}
		if r.EndCharacter > prev.EndCharacter {
			prev.EndCharacter = r.EndCharacter
		}
		merged[key] = prev
	}

	out := make([]Range, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		if out[i].StartCharacter != out[j].StartCharacter {
			return out[i].StartCharacter < out[j].StartCharacter
		}
		return out[i].EndLine < out[j].EndLine
	})
	return out
}
