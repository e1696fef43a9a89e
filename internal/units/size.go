// Package units parses unit-aware scalars such as "10 GB".
package units

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/inf.v0"
	"k8s.io/apimachinery/pkg/api/resource"
)

var sizeRegex = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+)\s*([A-Za-z]+)\s*$`)

// sizeSuffixes maps lower-cased size units to quantity suffixes.
var sizeSuffixes = map[string]string{
	"b":   "",
	"kb":  "k",
	"kib": "Ki",
	"mb":  "M",
	"mib": "Mi",
	"gb":  "G",
	"gib": "Gi",
	"tb":  "T",
	"tib": "Ti",
}

// ParseSize converts a size with unit, e.g. "10 GB" or "512 MiB", into a
// byte count. Fractional byte counts are truncated.
func ParseSize(text string) (int64, error) {
	m := sizeRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q: expected \"<number> <unit>\"", text)
	}

	suffix, ok := sizeSuffixes[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown unit %q", text, m[2])
	}

	q, err := resource.ParseQuantity(m[1] + suffix)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", text, err)
	}
	d := q.AsDec()
	d.Round(d, 0, inf.RoundDown)
	if !d.UnscaledBig().IsInt64() {
		return 0, fmt.Errorf("invalid size %q: out of range", text)
	}
	return d.UnscaledBig().Int64(), nil
}
