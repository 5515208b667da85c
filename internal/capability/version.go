package capability

import (
	"strconv"
	"strings"
)

// versionInRange checks a probed distribution version string against a
// mapping's declared range. Ranges are one of: "" (any), "N" (exact major),
// "N+" (N and above), "N-M" (inclusive bounds). This is deliberately small:
// the registry only needs enough range expressiveness to distinguish major
// distribution releases, not a general semver comparator.
func versionInRange(probed, rangeSpec string) bool {
	if rangeSpec == "" {
		return true
	}
	major := majorOf(probed)
	if major < 0 {
		return false
	}

	if strings.HasSuffix(rangeSpec, "+") {
		min := majorOf(strings.TrimSuffix(rangeSpec, "+"))
		return min >= 0 && major >= min
	}
	if lo, hi, ok := strings.Cut(rangeSpec, "-"); ok {
		loN, hiN := majorOf(lo), majorOf(hi)
		return loN >= 0 && hiN >= 0 && major >= loN && major <= hiN
	}
	return major == majorOf(rangeSpec)
}

func majorOf(v string) int {
	first, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return -1
	}
	return n
}
