package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in       string
		expected Role
	}{
		{"user", RoleUser},
		{"USER", RoleUser},
		{"User", RoleUser},
		{"owner", RoleOwner},
		{"Owner", RoleOwner},
		{"oWnEr", RoleOwner},
		{"", Role("")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRole(tt.in))
		})
	}
}
