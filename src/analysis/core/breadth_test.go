package core

import "testing"

func TestAdjacentBreadth(t *testing.T) {
	tests := []struct {
		name        string
		closes      []float64
		wantGainers int
		wantLosers  int
		wantRatio   float64
	}{
		{
			name:        "empty table",
			closes:      nil,
			wantGainers: 0,
			wantLosers:  0,
			wantRatio:   0,
		},
		{
			name:        "single row has no predecessor",
			closes:      []float64{10},
			wantGainers: 0,
			wantLosers:  0,
			wantRatio:   0,
		},
		{
			name:        "up then down",
			closes:      []float64{10, 12, 9},
			wantGainers: 1,
			wantLosers:  1,
			wantRatio:   0.5,
		},
		{
			name:        "no losers divides by one",
			closes:      []float64{1, 2, 3, 4},
			wantGainers: 3,
			wantLosers:  0,
			wantRatio:   3,
		},
		{
			name:        "flat moves are not counted",
			closes:      []float64{5, 5, 5, 4},
			wantGainers: 0,
			wantLosers:  1,
			wantRatio:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gainers, losers, ratio := AdjacentBreadth(tt.closes)
			if gainers != tt.wantGainers || losers != tt.wantLosers {
				t.Errorf("expected %d/%d, got %d/%d", tt.wantGainers, tt.wantLosers, gainers, losers)
			}
			if ratio != tt.wantRatio {
				t.Errorf("expected ratio %v, got %v", tt.wantRatio, ratio)
			}
			maxMoves := len(tt.closes) - 1
			if maxMoves < 0 {
				maxMoves = 0
			}
			if gainers+losers > maxMoves {
				t.Errorf("gainers+losers=%d exceeds %d", gainers+losers, maxMoves)
			}
		})
	}
}

func TestBreadthRatioIsExact(t *testing.T) {
	for gainers := 0; gainers < 5; gainers++ {
		for losers := 0; losers < 5; losers++ {
			want := float64(gainers) / float64(losers+1)
			if got := BreadthRatio(gainers, losers); got != want {
				t.Errorf("BreadthRatio(%d, %d) = %v, want %v", gainers, losers, got, want)
			}
		}
	}
}

func TestSessionBreadth(t *testing.T) {
	closes := []float64{10, 12, 9, 7}
	previous := []float64{9, 12, 10, 8}

	gainers, losers, ratio := SessionBreadth(closes, previous)
	if gainers != 1 || losers != 2 {
		t.Fatalf("expected 1/2, got %d/%d", gainers, losers)
	}
	if ratio != 1.0/3.0 {
		t.Errorf("expected ratio 1/3, got %v", ratio)
	}
}
