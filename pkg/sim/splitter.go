package sim

import "sort"

// splitUsers assigns each scenario a disjoint, contiguous slice of ids
// proportional to its weight (spec.md §4.3). It is a deterministic
// partitioning scheme, grounded in the teacher's
// WeightedRequestSelector (pkg/benchmark/selector.go) but reworked
// from probabilistic per-request selection into a one-time partition,
// since spec.md requires every user id to land in exactly one
// scenario rather than being redrawn on each iteration.
//
// Guarantees (spec.md §8 properties 1-2): every id appears in exactly
// one scenario; every scenario with positive weight gets at least one
// id whenever there are at least as many ids as scenarios.
func splitUsers(ids []int, weights []int) [][]int {
	n := len(weights)
	result := make([][]int, n)
	if n == 0 || len(ids) == 0 {
		return result
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		totalWeight = n // fall back to equal split
		weights = make([]int, n)
		for i := range weights {
			weights[i] = 1
		}
	}

	total := len(ids)
	counts := make([]int, n)
	remainders := make([]float64, n)
	allocated := 0
	for i, w := range weights {
		exact := float64(total) * float64(w) / float64(totalWeight)
		counts[i] = int(exact)
		remainders[i] = exact - float64(counts[i])
		allocated += counts[i]
	}

	// Largest-remainder method distributes the rounding slack so the
	// counts sum back to len(ids).
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	for i := 0; allocated < total; i++ {
		counts[order[i%n]]++
		allocated++
	}

	// Every scenario with a positive weight must get at least one id
	// when there are enough ids to go around (spec.md §8 property 2).
	// Round minimums up, stealing from the largest bucket.
	if total >= n {
		for i, w := range weights {
			if w > 0 && counts[i] == 0 {
				largest := 0
				for j := 1; j < n; j++ {
					if counts[j] > counts[largest] {
						largest = j
					}
				}
				counts[largest]--
				counts[i]++
			}
		}
	}

	idx := 0
	for i, c := range counts {
		if c < 0 {
			c = 0
		}
		end := idx + c
		if end > len(ids) {
			end = len(ids)
		}
		result[i] = append([]int(nil), ids[idx:end]...)
		idx = end
	}
	// Any ids left over due to rounding edge cases land on the last
	// scenario rather than being dropped.
	if idx < len(ids) && n > 0 {
		result[n-1] = append(result[n-1], ids[idx:]...)
	}
	return result
}

// splitRate divides a target rate R across scenarios proportional to
// weight, as integer per-scenario rates summing to R truncated to an
// integer, each at least 1 when its weight allows (spec.md §4.3, §8
// property 3). When that integer is below the number of scenarios, the
// sum is the number of scenarios instead.
func splitRate(rate float64, weights []int) []float64 {
	n := len(weights)
	result := make([]float64, n)
	if n == 0 || rate <= 0 {
		return result
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 {
		return result
	}

	total := int(rate)
	if total < n {
		total = n // every positive-weight scenario gets at least 1
	}
	counts := make([]int, n)
	remainders := make([]float64, n)
	allocated := 0
	for i, w := range weights {
		exact := float64(total) * float64(w) / float64(totalWeight)
		counts[i] = int(exact)
		if counts[i] < 1 && w > 0 {
			counts[i] = 1
		}
		remainders[i] = exact - float64(counts[i])
		allocated += counts[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })

	// target is the bumped-up total, not the raw rate: when rate < n,
	// every positive-weight scenario must clear the floor of 1, which
	// makes the true sum n, not rate (spec.md §8 property 3 and the
	// "every scenario gets at least one" guarantee cannot both hold
	// when rate < n, and the floor wins — see DESIGN.md).
	target := total
	for i := 0; allocated != target; {
		if allocated < target {
			counts[order[i%n]]++
			allocated++
		} else {
			j := order[(n-1-i%n+n)%n]
			if counts[j] > 1 {
				counts[j]--
				allocated--
			}
		}
		i++
		if i > 4*n+total {
			break // defensive: never spin forever on pathological weights
		}
	}

	for i, c := range counts {
		result[i] = float64(c)
	}
	return result
}
