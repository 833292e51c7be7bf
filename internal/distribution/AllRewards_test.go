// ./internal/distribution/AllRewards_test.go
package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

func TestDayAllRewardsOnEpochEndIncludesGovernance(t *testing.T) {
	day := epoch.Date(2023, 12, 1)
	require.Equal(t, day, epoch.EndDate(451))

	api := spTestAnalytics(epoch.SnapshotTime(day))
	api.staking = []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 100_000_000},
		{Owner: "bob", StakedIndy: 100_000_000},
	}
	engine := newTestEngine(api, nil)

	rewards, err := engine.DayAllRewards(day, 22431, 4795, 2398)
	require.NoError(t, err)

	// Two governance rewards plus four SP rewards, no LP since the LP
	// program had already moved to the dexes.
	require.Len(t, rewards, 6)

	var govCount int
	for _, reward := range rewards {
		if reward.Description == "INDY staking reward" {
			govCount++
			assert.InDelta(t, 1199, reward.Indy, 1e-9)
		}
	}
	assert.Equal(t, 2, govCount)
}

func TestDayAllRewardsMidEpochSkipsGovernance(t *testing.T) {
	day := epoch.Date(2023, 11, 29)

	api := spTestAnalytics(epoch.SnapshotTime(epoch.Date(2023, 12, 1)))
	api.staking = []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 100_000_000},
	}
	engine := newTestEngine(api, nil)

	rewards, err := engine.DayAllRewards(day, 22431, 4795, 2398)
	require.NoError(t, err)

	for _, reward := range rewards {
		assert.NotEqual(t, "INDY staking reward", reward.Description)
		assert.Equal(t, day, reward.Day)
	}
	// bob and carol hadn't been staked for 24 hours yet on this day.
	require.Len(t, rewards, 3)
}
