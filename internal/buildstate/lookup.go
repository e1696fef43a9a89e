package buildstate

import (
	"fmt"
	"strings"
)

// LookupTokenPrefix prefixes every deferred service address token.
const LookupTokenPrefix = "SERVICE_IP_LOOKUP"

// LookupTable maps monotonically allocated indices to service names.
type LookupTable struct {
	services []string
}

// Allocate records service under the next free index and returns it.
func (t *LookupTable) Allocate(service string) int {
	t.services = append(t.services, service)
	return len(t.services) - 1
}

// Len returns the number of allocated indices.
func (t *LookupTable) Len() int {
	return len(t.services)
}

// Token returns the token name for index k, e.g. SERVICE_IP_LOOKUP0.
func Token(k int) string {
	return fmt.Sprintf("%s%d", LookupTokenPrefix, k)
}

// Placeholder returns the environment value standing in for index k.
func Placeholder(k int) string {
	return "$" + Token(k)
}

// String renders the table as TOKEN0:svcA,TOKEN1:svcB in index order.
func (t *LookupTable) String() string {
	parts := make([]string, len(t.services))
	for i, service := range t.services {
		parts[i] = Token(i) + ":" + service
	}
	return strings.Join(parts, ",")
}
