package counter

// SmallestCommonDivisor returns the smallest prime that divides every
// element of a. Signs are ignored and zeros are skipped since zero is
// divisible by everything. It returns 1 if the elements are coprime or the
// smallest nonzero magnitude is 1, and 0 if every element is zero.
//
// Only prime factors of the smallest nonzero magnitude can be common, so
// that magnitude is trial-divided by 2, 3 and then 6k±1.
//
//	SmallestCommonDivisor(0, 0)      // 0
//	SmallestCommonDivisor(2, -4, 8)  // 2
//	SmallestCommonDivisor(2, 4, 6, 3) // 1
func SmallestCommonDivisor(a ...int) int {
	return smallestCommonDivisor(0, a)
}

// SmallestCommonDivisorWith is SmallestCommonDivisor over x followed by a,
// without allocating. It is used to test winding numbers together with the
// scan count.
func SmallestCommonDivisorWith(x int, a []int) int {
	return smallestCommonDivisor(x, a)
}

func smallestCommonDivisor(x int, a []int) int {
	m := abs(x)
	for _, v := range a {
		v = abs(v)
		if v != 0 && (m == 0 || v < m) {
			m = v
		}
	}
	if m < 2 {
		return m
	}

	divides := func(p int) bool {
		if x%p != 0 {
			return false
		}
		for _, v := range a {
			if v%p != 0 {
				return false
			}
		}
		return true
	}

	for _, p := range [2]int{2, 3} {
		if m%p == 0 {
			if divides(p) {
				return p
			}
			for m%p == 0 {
				m /= p
			}
		}
	}

	for d := 5; d*d <= m; d += 6 {
		for _, p := range [2]int{d, d + 2} {
			if m%p == 0 {
				if divides(p) {
					return p
				}
				for m%p == 0 {
					m /= p
				}
			}
		}
	}
	if m > 1 && divides(m) {
		return m
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
