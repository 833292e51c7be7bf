// ./internal/summary/Summary_test.go
package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

func summaryTestRewards() []types.IndividualReward {
	day := epoch.Date(2023, 12, 1)
	expiration := time.Date(2024, 2, 29, 21, 45, 0, 0, time.UTC)
	return []types.IndividualReward{
		{PKH: "aaaa", Indy: 1.5, Day: day, Description: "SP reward for iUSD", Expiration: expiration},
		{PKH: "bbbb", Indy: 0.25, Day: day, Description: "SP reward for iUSD", Expiration: expiration},
		{PKH: "aaaa", Indy: 3, Day: day, Description: "Reward for providing iUSD liquidity on Minswap", Expiration: expiration},
		{PKH: "cccc", Indy: 10, Day: day, Description: "INDY staking reward", Expiration: expiration},
	}
}

func TestRows(t *testing.T) {
	rewards := summaryTestRewards()

	rows := Rows(rewards)
	require.Len(t, rows, 4)

	first := rows[0]
	assert.Equal(t, 452, first.Period)
	assert.Equal(t, "aaaa", first.Address)
	assert.Equal(t, "SP reward for iUSD", first.Purpose)
	assert.Equal(t, "2023-12-01", first.Date)
	assert.Equal(t, int64(1_500_000), first.Amount)
	assert.Equal(t, "2024-02-29 21:45", first.Expiration)
	assert.Equal(t, "2023-12-01 23:00", first.AvailableAt)

	// Input order survives.
	assert.Equal(t, "bbbb", rows[1].Address)
	assert.Equal(t, int64(250_000), rows[1].Amount)
	assert.Equal(t, "INDY staking reward", rows[3].Purpose)
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, summaryTestRewards()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Period,Address,Purpose,Date,Amount,Expiration,AvailableAt", lines[0])
	assert.Equal(t, "452,aaaa,SP reward for iUSD,2023-12-01,1500000,2024-02-29 21:45,2023-12-01 23:00", lines[1])
	assert.Equal(t, "452,cccc,INDY staking reward,2023-12-01,10000000,2024-02-29 21:45,2023-12-01 23:00", lines[4])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Period,Address,Purpose,Date,Amount,Expiration,AvailableAt\n", buf.String())
}

func TestBreakdown(t *testing.T) {
	lines := Breakdown(summaryTestRewards(), false)

	require.Len(t, lines, 3)
	assert.Equal(t, Line{Purpose: "INDY staking reward", Amount: 10}, lines[0])
	assert.Equal(t, Line{Purpose: "Reward for providing iUSD liquidity on Minswap", Amount: 3}, lines[1])
	assert.Equal(t, Line{Purpose: "SP reward for iUSD", Amount: 1.75}, lines[2])
}

func TestBreakdownWithTotals(t *testing.T) {
	lines := Breakdown(summaryTestRewards(), true)

	require.Len(t, lines, 7)
	assert.Equal(t, Line{Purpose: "Total INDY staking reward", Amount: 10}, lines[3])
	assert.Equal(t, Line{Purpose: "Total LP reward", Amount: 3}, lines[4])
	assert.Equal(t, Line{Purpose: "Total SP reward", Amount: 1.75}, lines[5])
	assert.Equal(t, Line{Purpose: "Total", Amount: 14.75}, lines[6])
}

func TestBreakdownEmpty(t *testing.T) {
	assert.Empty(t, Breakdown(nil, true))
}

func TestSplitPurpose(t *testing.T) {
	group, detail := splitPurpose("Reward for providing iBTC liquidity on WingRiders")
	assert.Equal(t, "LP reward", group)
	assert.Equal(t, "iBTC on WingRiders", detail)

	group, detail = splitPurpose("SP reward for iETH")
	assert.Equal(t, "SP reward", group)
	assert.Equal(t, "iETH", detail)

	group, detail = splitPurpose("INDY staking reward")
	assert.Equal(t, "INDY staking reward", group)
	assert.Equal(t, "", detail)
}
