package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{"  AaPl \t", "AAPL"},
		{"AAPL", "AAPL"},
		{"brk.b", "BRK.B"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_SameKeyForCasingAndWhitespace(t *testing.T) {
	assert.Equal(t, Normalize(" msft"), Normalize("MSFT "))
	assert.Equal(t, Normalize("msft"), Normalize("\nMsFt"))
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"aapl", "MSFT", " AAPL", "", "nvda", "msft"})
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)
}

func TestUnique_Empty(t *testing.T) {
	assert.Empty(t, Unique(nil))
	assert.NotNil(t, Unique(nil))
}

func TestContains(t *testing.T) {
	list := []string{"AAPL", "MSFT"}
	assert.True(t, Contains(list, " aapl"))
	assert.False(t, Contains(list, "TSLA"))
}
