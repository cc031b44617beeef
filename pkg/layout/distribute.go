package layout

// Distribute splits available units among children along the main axis.
//
// Fixed children get their length in full. Whatever remains after fixed
// lengths and the spacing between children is shared by stretch children in
// proportion to their weights: each gets floor(remaining*weight/total), and
// the units lost to rounding go one at a time to stretch children in child
// order, so the lengths always add up exactly.
//
// When fixed lengths and spacing exceed available, stretch children get 0
// and overflow is true. Fixed children are still honored.
func Distribute(available, spacing int, hints []Hint) (lengths []int, overflow bool) {
	if len(hints) == 0 {
		return nil, false
	}
	lengths = make([]int, len(hints))

	remaining := available - max(0, spacing)*(len(hints)-1)
	totalWeight := 0
	for i, h := range hints {
		if h.IsFixed() {
			lengths[i] = h.Length()
			remaining -= h.Length()
			continue
		}
		totalWeight += h.Weight()
	}

	if remaining < 0 {
		return lengths, true
	}
	if totalWeight == 0 {
		return lengths, false
	}

	leftover := remaining
	for i, h := range hints {
		if h.IsFixed() {
			continue
		}
		lengths[i] = remaining * h.Weight() / totalWeight
		leftover -= lengths[i]
	}
	for i, h := range hints {
		if leftover == 0 {
			break
		}
		if h.IsFixed() {
			continue
		}
		lengths[i]++
		leftover--
	}
	return lengths, false
}
