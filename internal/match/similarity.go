package match

// Ratio calculates the Ratcliff/Obershelp similarity of two strings as a
// value in [0,1]: twice the total length of the matching blocks divided by
// the combined length of both strings. Matching blocks are found
// longest-first and never overlap, so the measure rewards long shared
// runs rather than penalizing edits. This is a pure function with no
// side effects. Two empty strings are considered identical (ratio 1).
func Ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	// Positions of each byte of b, ascending. Inputs are normalized ASCII,
	// so byte indexing is safe.
	b2j := make(map[byte][]int, len(b))
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	matches := 0
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		besti, bestj, size := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matches += size
		if s.alo < besti && s.blo < bestj {
			queue = append(queue, span{s.alo, besti, s.blo, bestj})
		}
		if besti+size < s.ahi && bestj+size < s.bhi {
			queue = append(queue, span{besti + size, s.ahi, bestj + size, s.bhi})
		}
	}

	return 2.0 * float64(matches) / float64(total)
}

// longestMatch finds the longest block of a[alo:ahi] that also appears in
// b[blo:bhi]. Ties go to the block starting earliest in a, then earliest
// in b. Uses the classic dynamic scan: j2len[j] is the length of the
// longest match ending at a[i-1]/b[j].
func longestMatch(a string, b2j map[byte][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
