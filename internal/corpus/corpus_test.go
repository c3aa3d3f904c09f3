package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyricbench/pkg/timing"
)

func TestFixed(t *testing.T) {
	lines := Fixed(DefaultSize, DefaultInterval)
	require.Len(t, lines, DefaultSize)
	require.NoError(t, timing.Validate(lines))

	assert.Equal(t, timing.NewLine(0, 50, ""), lines[0])
	for i := 0; i+1 < len(lines); i++ {
		require.Equal(t, lines[i].End(), lines[i+1].Begin(), "gap after line %d", i)
		require.Equal(t, DefaultInterval, lines[i].Duration())
	}
	assert.Equal(t, int64(5_000_000), TotalDuration(lines))

	assert.Nil(t, Fixed(0, 50))
	assert.Zero(t, TotalDuration[timing.Line](nil))
}

func TestSinglePoint(t *testing.T) {
	positions := SinglePoint(5_000_000, DefaultTrials)
	require.Len(t, positions, DefaultTrials)
	for _, p := range positions {
		require.Equal(t, int64(2_500_000), p)
	}
}

func TestContinuous(t *testing.T) {
	positions := Continuous(5_000_000, DefaultFrameRates, DefaultDurationSec)
	require.Len(t, positions, (30+60+120)*DefaultDurationSec)

	assert.Equal(t, []int64{0, 33, 67, 100}, positions[:4])
	// 60fps run starts after the 300 frames of the 30fps run
	assert.Equal(t, []int64{0, 17, 33}, positions[300:303])

	clamped := Continuous(100, []int{30}, 1)
	assert.Equal(t, int64(100), clamped[len(clamped)-1])
}

func TestUniformSweep(t *testing.T) {
	positions := UniformSweep(5_000_000, DefaultSeekCount)
	require.Len(t, positions, DefaultSeekCount)
	assert.Equal(t, int64(0), positions[0])
	assert.Equal(t, int64(500), positions[1])
	assert.Less(t, positions[len(positions)-1], int64(5_000_000))

	assert.Equal(t, positions, UniformSweep(5_000_000, DefaultSeekCount), "must be deterministic")
}

func TestJitter(t *testing.T) {
	total := int64(5_000_000)
	centers := HotspotCenters(total)
	assert.Equal(t, []int64{1_666_666, 2_500_000, 3_333_333}, centers)

	perCenter := DefaultJitterCount / len(centers)
	positions := Jitter(centers, perCenter, DefaultJitterRadius, total)
	require.Len(t, positions, perCenter*len(centers))

	assert.Equal(t, centers[0]-300, positions[0])
	assert.Equal(t, centers[0]-299, positions[1])
	assert.Equal(t, centers[0]+300, positions[600])
	assert.Equal(t, centers[0]-300, positions[601])
	assert.Equal(t, centers[1]-300, positions[perCenter])

	for _, p := range positions {
		require.True(t, p >= 0 && p <= total)
	}

	edge := Jitter([]int64{0, 1000}, 11, 5, 1000)
	assert.Equal(t, int64(0), edge[0])
	assert.Equal(t, int64(1000), edge[len(edge)-1])
}

func TestForwardSweep(t *testing.T) {
	positions := ForwardSweep(16, 100)
	assert.Equal(t, []int64{0, 16, 32, 48, 64, 80, 96}, positions)

	positions = ForwardSweep(50, 100)
	assert.Equal(t, []int64{0, 50, 100}, positions)

	assert.Nil(t, ForwardSweep(0, 100))
}
