package decay

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinear_Endpoints(t *testing.T) {
	start := big.NewInt(1000)
	end := big.NewInt(900)

	// at or before decay start the start amount holds exactly
	assert.Equal(t, int64(1000), Linear(start, end, 100, 200, 50, RoundUp).Int64())
	assert.Equal(t, int64(1000), Linear(start, end, 100, 200, 100, RoundUp).Int64())

	// at or after decay end the end amount holds exactly
	assert.Equal(t, int64(900), Linear(start, end, 100, 200, 200, RoundUp).Int64())
	assert.Equal(t, int64(900), Linear(start, end, 100, 200, 500, RoundUp).Int64())
}

func TestLinear_InterpolationRoundsTowardSwapper(t *testing.T) {
	// output leg from the overview scenario: 1000 -> 900 over 90300 seconds,
	// evaluated 57600 seconds in. Exact value is 936.21...; the swapper
	// receives this amount so it rounds up.
	got := Linear(big.NewInt(1000), big.NewInt(900), 0, 90300, 57600, RoundUp)
	assert.Equal(t, int64(937), got.Int64())

	// same range as a filler-paid quantity rounds down
	got = Linear(big.NewInt(1000), big.NewInt(900), 0, 90300, 57600, RoundDown)
	assert.Equal(t, int64(936), got.Int64())

	// upward decay (input leg): 100 -> 200 halfway-ish
	got = Linear(big.NewInt(100), big.NewInt(200), 0, 3, 1, RoundDown)
	assert.Equal(t, int64(133), got.Int64())
	got = Linear(big.NewInt(100), big.NewInt(200), 0, 3, 1, RoundUp)
	assert.Equal(t, int64(134), got.Int64())
}

func TestLinear_FlatRange(t *testing.T) {
	got := Linear(big.NewInt(500), big.NewInt(500), 0, 100, 50, RoundUp)
	assert.Equal(t, int64(500), got.Int64())
}

func TestLinear_Boundedness(t *testing.T) {
	start := big.NewInt(1_000_000)
	end := big.NewInt(1)
	lo, hi := end, start
	for now := uint64(0); now <= 120; now += 7 {
		for _, r := range []Rounding{RoundDown, RoundUp} {
			v := Linear(start, end, 10, 110, now, r)
			assert.True(t, v.Cmp(lo) >= 0, "now=%d value=%s below range", now, v)
			assert.True(t, v.Cmp(hi) <= 0, "now=%d value=%s above range", now, v)
		}
	}
}

func TestValidateWindow(t *testing.T) {
	assert.NoError(t, ValidateWindow(100, 200, 300))
	assert.NoError(t, ValidateWindow(100, 200, 200))
	assert.ErrorIs(t, ValidateWindow(200, 100, 300), ErrEndTimeBeforeStartTime)
	assert.ErrorIs(t, ValidateWindow(100, 200, 150), ErrDeadlineBeforeEndTime)
}

func TestValidateRanges(t *testing.T) {
	// input may only decay upward
	assert.NoError(t, ValidateInputRange(big.NewInt(100), big.NewInt(200)))
	assert.NoError(t, ValidateInputRange(big.NewInt(100), big.NewInt(100)))
	assert.ErrorIs(t, ValidateInputRange(big.NewInt(200), big.NewInt(100)), ErrIncorrectAmounts)

	// output may only decay downward
	assert.NoError(t, ValidateOutputRange(big.NewInt(200), big.NewInt(100)))
	assert.NoError(t, ValidateOutputRange(big.NewInt(100), big.NewInt(100)))
	assert.ErrorIs(t, ValidateOutputRange(big.NewInt(100), big.NewInt(200)), ErrIncorrectAmounts)
}

func TestValidateSingleDirection(t *testing.T) {
	assert.NoError(t, ValidateSingleDirection(true, false))
	assert.NoError(t, ValidateSingleDirection(false, true))
	assert.NoError(t, ValidateSingleDirection(false, false))
	assert.ErrorIs(t, ValidateSingleDirection(true, true), ErrInputAndOutputDecay)
}
