package decay

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openfill/fillgate/internal/types"
)

func pt(blocks uint64, delta int64) types.CurvePoint {
	return types.CurvePoint{
		RelativeBlocks: blocks,
		RelativeAmount: types.NewU256(big.NewInt(delta)),
	}
}

func TestPiecewise_BeforeStartReturnsBase(t *testing.T) {
	curve := []types.CurvePoint{pt(10, -100)}
	got := Piecewise(big.NewInt(1000), curve, 50, 40, RoundUp)
	assert.Equal(t, int64(1000), got.Int64())
	got = Piecewise(big.NewInt(1000), curve, 50, 50, RoundUp)
	assert.Equal(t, int64(1000), got.Int64())
}

func TestPiecewise_SingleSegment(t *testing.T) {
	// 1000 at block 100 decaying to 900 at block 110
	curve := []types.CurvePoint{pt(10, -100)}
	got := Piecewise(big.NewInt(1000), curve, 100, 105, RoundUp)
	assert.Equal(t, int64(950), got.Int64())

	// at the point itself the full delta applies
	got = Piecewise(big.NewInt(1000), curve, 100, 110, RoundUp)
	assert.Equal(t, int64(900), got.Int64())
}

func TestPiecewise_ClampsPastLastPoint(t *testing.T) {
	curve := []types.CurvePoint{pt(10, -100), pt(20, -150)}
	got := Piecewise(big.NewInt(1000), curve, 100, 500, RoundUp)
	assert.Equal(t, int64(850), got.Int64())
}

func TestPiecewise_MultiSegment(t *testing.T) {
	// segment 1: 1000 -> 900 over blocks 0..10
	// segment 2: 900 -> 880 over blocks 10..30
	curve := []types.CurvePoint{pt(10, -100), pt(30, -120)}

	got := Piecewise(big.NewInt(1000), curve, 0, 20, RoundUp)
	assert.Equal(t, int64(890), got.Int64())

	// rounding inside the second segment: 900 - 20*7/20 = 893
	got = Piecewise(big.NewInt(1000), curve, 0, 17, RoundUp)
	assert.Equal(t, int64(893), got.Int64())
}

// Stacked zero-duration points are instantaneous: evaluated exactly at the
// shared offset the first point in declaration order wins, while evaluation
// past the offset interpolates from the last one. Preserved as observed
// behavior, not inferred intent.
func TestPiecewise_StackedZeroDurationPoints(t *testing.T) {
	curve := []types.CurvePoint{
		pt(10, -100), // first point at offset 10
		pt(10, -200), // second point at the same offset
		pt(20, -300),
	}
	base := big.NewInt(1000)

	// exactly at the boundary: first stacked point supplies the value
	got := Piecewise(base, curve, 0, 10, RoundUp)
	assert.Equal(t, int64(900), got.Int64())

	// just past the boundary: interpolation anchors on the last stacked
	// point (800), heading to 700 at offset 20
	got = Piecewise(base, curve, 0, 11, RoundUp)
	assert.Equal(t, int64(790), got.Int64())

	got = Piecewise(base, curve, 0, 20, RoundUp)
	assert.Equal(t, int64(700), got.Int64())
}

func TestPiecewise_RoundingDirections(t *testing.T) {
	// 1000 -> 990 over 3 blocks; at block 1 exact value is 996.66...
	curve := []types.CurvePoint{pt(3, -10)}
	assert.Equal(t, int64(997), Piecewise(big.NewInt(1000), curve, 0, 1, RoundUp).Int64())
	assert.Equal(t, int64(996), Piecewise(big.NewInt(1000), curve, 0, 1, RoundDown).Int64())
}

func TestValidateOutputCurve(t *testing.T) {
	start := big.NewInt(1000)
	min := big.NewInt(800)

	assert.NoError(t, ValidateOutputCurve(start, min, []types.CurvePoint{pt(10, -100)}))
	// upward delta on an output leg
	assert.ErrorIs(t, ValidateOutputCurve(start, min, []types.CurvePoint{pt(10, 50)}), ErrIncorrectAmounts)
	// crosses the declared floor
	assert.ErrorIs(t, ValidateOutputCurve(start, min, []types.CurvePoint{pt(10, -300)}), ErrIncorrectAmounts)
}

func TestValidateInputCurve(t *testing.T) {
	start := big.NewInt(100)
	max := big.NewInt(150)

	assert.NoError(t, ValidateInputCurve(start, max, []types.CurvePoint{pt(10, 50)}))
	assert.ErrorIs(t, ValidateInputCurve(start, max, []types.CurvePoint{pt(10, -10)}), ErrIncorrectAmounts)
	assert.ErrorIs(t, ValidateInputCurve(start, max, []types.CurvePoint{pt(10, 60)}), ErrIncorrectAmounts)
}

func TestCurveEndBlock(t *testing.T) {
	curve := []types.CurvePoint{pt(10, -1), pt(30, -2), pt(20, -3)}
	assert.Equal(t, uint64(130), CurveEndBlock(100, curve))
	assert.Equal(t, uint64(100), CurveEndBlock(100, nil))
}
