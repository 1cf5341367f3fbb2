package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLot(t *testing.T) {
	tests := []struct {
		input   string
		want    Lot
		wantErr bool
	}{
		{"AAPL 10", Lot{Symbol: "AAPL", Qty: 10}, false},
		{"aapl 10 $120.5", Lot{Symbol: "aapl", Qty: 10, AvgCost: 120.5}, false},
		{"  msft   2.5   300 ", Lot{Symbol: "msft", Qty: 2.5, AvgCost: 300}, false},
		{"AAPL", Lot{}, true},
		{"AAPL ten", Lot{}, true},
		{"AAPL 1 x", Lot{}, true},
		{"AAPL 1 2 3", Lot{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLot(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
