package peel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v uint32) *uint32 { return &v }

func TestEvaluateBlend(t *testing.T) {
	tests := []struct {
		name      string
		samples   uint32
		previous  *uint32
		threshold float64
		done      bool
		stalled   bool
	}{
		{"first pass above threshold", 1000, nil, 200, false, false},
		{"at threshold", 200, ptr(1000), 200, true, false},
		{"below threshold", 0, ptr(5), 200, true, false},
		{"decreasing", 400, ptr(1000), 200, false, false},
		{"equal counts stall", 400, ptr(400), 200, true, true},
		{"increasing counts stall", 500, ptr(400), 200, true, true},
		{"zero threshold", 1, nil, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := evaluateBlend(tt.samples, tt.previous, tt.threshold)
			assert.Equal(t, tt.done, s.Done)
			assert.Equal(t, tt.stalled, s.Stalled)
			if assert.NotNil(t, s.SamplesPassed) {
				assert.Equal(t, tt.samples, *s.SamplesPassed)
			}
		})
	}
}

func TestOcclusionThreshold(t *testing.T) {
	assert.Equal(t, 0.0, occlusionThreshold(0, 100, 100))
	assert.InDelta(t, 200.0, occlusionThreshold(0.02, 100, 100), 1e-9)
	assert.Equal(t, 1.0, occlusionThreshold(1, 1, 1))
}

func TestSlots(t *testing.T) {
	assert.Equal(t, []int{1, 0, 1, 0}, []int{currentSlot(0), currentSlot(1), currentSlot(2), currentSlot(3)})
	for i := 0; i < 4; i++ {
		cur := currentSlot(i)
		assert.NotEqual(t, cur, previousSlot(cur))
	}
}

func TestAttachmentLayout(t *testing.T) {
	seen := map[int]bool{}
	for slot := 0; slot < 2; slot++ {
		for _, a := range []int{depthAttachment(slot), frontAttachment(slot), backAttachment(slot)} {
			assert.False(t, seen[a])
			seen[a] = true
		}
	}
	assert.Len(t, seen, 6)
}
