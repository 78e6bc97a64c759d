package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Joao@Example.com", "joao@example.com"},
		{"  joao@example.com  ", "joao@example.com"},
		{"JOAO@EXAMPLE.COM", "joao@example.com"},
		{"joao@example.com", "joao@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestIsEmailDomainValid_SyntacticRejects(t *testing.T) {
	assert.False(t, IsEmailDomainValid("no-at-sign"))
	assert.False(t, IsEmailDomainValid("trailing@"))
	assert.False(t, IsEmailDomainValid(""))
}
