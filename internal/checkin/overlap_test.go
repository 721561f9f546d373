package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2030, 1, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		aStart    time.Time
		aEnd      time.Time
		bStart    time.Time
		bEnd      time.Time
		tolerance time.Duration
		want      bool
	}{
		{name: "disjoint", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(12, 0), bEnd: at(13, 0), want: false},
		{name: "disjoint reversed", aStart: at(12, 0), aEnd: at(13, 0), bStart: at(10, 0), bEnd: at(11, 0), want: false},
		{name: "partial", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 30), bEnd: at(12, 0), want: true},
		{name: "contained", aStart: at(10, 0), aEnd: at(13, 0), bStart: at(11, 0), bEnd: at(12, 0), want: true},
		{name: "touching is overlap when strict", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(11, 0), bEnd: at(12, 0), want: true},
		{name: "touching allowed with tolerance", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(11, 0), bEnd: at(12, 0), tolerance: time.Minute, want: false},
		{name: "exactly tolerance allowed", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 59), bEnd: at(12, 0), tolerance: time.Minute, want: false},
		{name: "beyond tolerance", aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 58), bEnd: at(12, 0), tolerance: time.Minute, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, tt.tolerance))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd, tt.tolerance), "symmetric")
		})
	}
}
