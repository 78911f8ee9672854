package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInIPRange(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		cidr string
		want bool
	}{
		{"inside /24", "192.168.1.100", "192.168.1.0/24", true},
		{"outside /24", "10.0.0.1", "192.168.1.0/24", false},
		{"inside /16", "10.1.200.3", "10.1.0.0/16", true},
		{"exact /32", "172.16.0.1", "172.16.0.1/32", true},
		{"bare address match", "172.16.0.1", "172.16.0.1", true},
		{"bare address mismatch", "172.16.0.2", "172.16.0.1", false},
		{"invalid ip", "not-an-ip", "192.168.1.0/24", false},
		{"invalid cidr", "192.168.1.1", "garbage/24", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInIPRange(tt.ip, tt.cidr))
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   interface{}
		operator string
		expected interface{}
		want     bool
	}{
		{"equals strings", "monday", OpEquals, "monday", true},
		{"equals numeric drift", 9, OpEquals, float64(9), true},
		{"not_equals", "monday", OpNotEquals, "sunday", true},
		{"greater_than", 14, OpGreaterThan, float64(9), true},
		{"greater_than false", 7, OpGreaterThan, float64(9), false},
		{"less_than", 7, OpLessThan, float64(9), true},
		{"greater_than non-numeric", "abc", OpGreaterThan, "def", false},
		{"contains strings", "employee@company.com", OpContains, "@company.com", true},
		{"contains non-string defaults false", 42, OpContains, "4", false},
		{"not_contains strings", "hello", OpNotContains, "world", true},
		{"not_contains non-string defaults true", 42, OpNotContains, "4", true},
		{"unknown operator", 1, "between", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareValues(tt.actual, tt.operator, tt.expected))
		})
	}
}
