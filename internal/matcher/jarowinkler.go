package matcher

// JaroWinkler computes the Jaro-Winkler similarity of two strings in [0, 1].
// Operates on runes so multibyte release names score sensibly.
func JaroWinkler(a, b string) float64 {
	jaro := jaroSimilarity([]rune(a), []rune(b))
	if jaro == 0 {
		return 0
	}

	prefix := commonPrefixLen([]rune(a), []rune(b), 4)
	const scaling = 0.1
	return jaro + float64(prefix)*scaling*(1-jaro)
}

func jaroSimilarity(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(len(a), len(b))/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))
	matches := 0
	for i, ca := range a {
		low := i - window
		if low < 0 {
			low = 0
		}
		high := i + window + 1
		if high > len(b) {
			high = len(b)
		}
		for j := low; j < high; j++ {
			if bMatched[j] || b[j] != ca {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i, matched := range aMatched {
		if !matched {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}
	transpositions /= 2

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions))/m) / 3
}

func commonPrefixLen(a, b []rune, limit int) int {
	n := min(len(a), len(b))
	if n > limit {
		n = limit
	}
	count := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			break
		}
		count++
	}
	return count
}
