package engine

import (
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
)

// Comparison operators understood by condition-based policies.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpGreaterThan = "greater_than"
	OpLessThan    = "less_than"
	OpContains    = "contains"
	OpNotContains = "not_contains"
)

// IsInIPRange reports whether ip falls inside the given CIDR range. A bare
// address is treated as a /32. IPv4 only.
func IsInIPRange(ip, cidr string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}

	if !strings.Contains(cidr, "/") {
		return parsed.Equal(net.ParseIP(cidr))
	}

	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return network.Contains(parsed)
}

// compareValues applies a comparison operator to an actual and expected value.
// The ordering operators require both operands to be numeric; contains and
// not_contains only evaluate meaningfully for string operands and otherwise
// default to false and true respectively.
func compareValues(actual interface{}, operator string, expected interface{}) bool {
	switch operator {
	case OpEquals:
		return looseEqual(actual, expected)
	case OpNotEquals:
		return !looseEqual(actual, expected)
	case OpGreaterThan:
		a, aOK := toFloat(actual)
		b, bOK := toFloat(expected)
		return aOK && bOK && a > b
	case OpLessThan:
		a, aOK := toFloat(actual)
		b, bOK := toFloat(expected)
		return aOK && bOK && a < b
	case OpContains:
		a, aOK := actual.(string)
		b, bOK := expected.(string)
		return aOK && bOK && strings.Contains(a, b)
	case OpNotContains:
		a, aOK := actual.(string)
		b, bOK := expected.(string)
		if !aOK || !bOK {
			return true
		}
		return !strings.Contains(a, b)
	default:
		return false
	}
}

// looseEqual compares two values, tolerating the numeric-type drift that JSON
// decoding introduces (ints arrive as float64).
func looseEqual(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if af, aOK := toFloat(a); aOK {
		if bf, bOK := toFloat(b); bOK {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
