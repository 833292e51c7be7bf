// ./internal/distribution/Governance_test.go
package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

func TestGovEpochRewards(t *testing.T) {
	api := &stubAnalytics{staking: []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 100_000_000},
		{Owner: "bob", StakedIndy: 50_000_000},
		{Owner: "carol", StakedIndy: 50_000_000},
	}}
	engine := newTestEngine(api, nil)

	rewards, err := engine.GovEpochRewards(412, 2398)
	require.NoError(t, err)
	require.Len(t, rewards, 3)

	assert.InDelta(t, 1199, rewardByPKH(t, rewards, "alice").Indy, 1e-9)
	assert.InDelta(t, 599.5, rewardByPKH(t, rewards, "bob").Indy, 1e-9)

	snapDate := epoch.EndDate(412)
	for _, reward := range rewards {
		assert.Equal(t, snapDate, reward.Day)
		assert.Equal(t, "INDY staking reward", reward.Description)
		assert.Equal(t, epoch.ExpirationTime(snapDate), reward.Expiration)
	}
}

func TestGovEpochRewardsMergesDuplicatesBeforeCutover(t *testing.T) {
	// Epoch 401 ends 2023-03-26, before the strict duplicate policy.
	api := &stubAnalytics{staking: []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 100_000_000},
		{Owner: "alice", StakedIndy: 50_000_000},
		{Owner: "bob", StakedIndy: 50_000_000},
	}}
	engine := newTestEngine(api, nil)

	rewards, err := engine.GovEpochRewards(401, 2398)
	require.NoError(t, err)
	require.Len(t, rewards, 2)

	assert.InDelta(t, 2398.0*150/200, rewardByPKH(t, rewards, "alice").Indy, 1e-9)
	assert.InDelta(t, 2398.0*50/200, rewardByPKH(t, rewards, "bob").Indy, 1e-9)
}

func TestGovEpochRewardsRejectsDuplicatesFromCutover(t *testing.T) {
	// Epoch 412 ends 2023-05-20, the first day of the strict policy.
	require.Equal(t, epoch.Date(2023, 5, 20), epoch.EndDate(412))

	api := &stubAnalytics{staking: []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 100_000_000},
		{Owner: "alice", StakedIndy: 50_000_000},
	}}
	engine := newTestEngine(api, nil)

	_, err := engine.GovEpochRewards(412, 2398)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alice")
}

func TestGovEpochRewardsNothingStaked(t *testing.T) {
	engine := newTestEngine(&stubAnalytics{}, nil)

	_, err := engine.GovEpochRewards(412, 2398)
	assert.ErrorIs(t, err, ErrNothingStaked)
}

func TestGovRewardsSumToEpochBudget(t *testing.T) {
	// GovEpochRewards verifies the rounded sum against the budget itself,
	// odd lovelace stakes must not trip it.
	api := &stubAnalytics{staking: []types.StakingAccountRecord{
		{Owner: "alice", StakedIndy: 33_333_333},
		{Owner: "bob", StakedIndy: 66_666_667},
		{Owner: "carol", StakedIndy: 123_456_789},
	}}
	engine := newTestEngine(api, nil)

	rewards, err := engine.GovEpochRewards(412, 2398)
	require.NoError(t, err)

	sum := utils.LovelacesToIndy(types.SumLovelaces(rewards))
	assert.InDelta(t, 2398, sum, sumTolerance)
}
