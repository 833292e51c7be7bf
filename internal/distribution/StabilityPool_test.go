// ./internal/distribution/StabilityPool_test.go
package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// spTestDay is in the fixed-weight era (2023-11-06 table: iBTC 3668,
// iETH 3188, iUSD 15574 out of 22431), so no volatility data is needed.
var spTestDay = epoch.Date(2023, 12, 1)

func spTestAnalytics(snap time.Time) *stubAnalytics {
	old := snap.Add(-48 * time.Hour).Unix()
	return &stubAnalytics{
		prices: []types.AssetPriceRecord{
			{Asset: "iUSD", Price: 1_000_000},
			{Asset: "iBTC", Price: 2_000_000},
			{Asset: "iETH", Price: 3_000_000},
		},
		cdps: []types.CDPRecord{
			{Asset: "iUSD", MintedAmount: 1_000_000_000},
			{Asset: "iBTC", MintedAmount: 100_000_000},
			{Asset: "iETH", MintedAmount: 100_000_000},
		},
		spAccounts: []types.StabilityPoolAccountRecord{
			{Asset: "iUSD", Owner: "alice", AssetStaked: 100_000_000, OpenedAt: old},
			{Asset: "iUSD", Owner: "bob", AssetStaked: 50_000_000, OpenedAt: snap.Add(-24 * time.Hour).Unix()},
			{Asset: "iUSD", Owner: "carol", AssetStaked: 70_000_000, OpenedAt: snap.Add(-23 * time.Hour).Unix()},
			{Asset: "iBTC", Owner: "alice", AssetStaked: 10_000_000, OpenedAt: old},
			{Asset: "iBTC", Owner: "alice", AssetStaked: 5_000_000, OpenedAt: old},
			{Asset: "iETH", Owner: "dave", AssetStaked: 20_000_000, OpenedAt: old},
		},
	}
}

func TestSPDayRewards(t *testing.T) {
	snap := epoch.SnapshotTime(spTestDay)
	engine := newTestEngine(spTestAnalytics(snap), nil)

	rewards, err := engine.SPDayRewards(spTestDay, 22431)
	require.NoError(t, err)

	// alice-iUSD, bob-iUSD, alice-iBTC (merged) and dave-iETH. carol
	// opened less than 24 hours before the snapshot.
	require.Len(t, rewards, 4)

	// iUSD pool gets 15574/5 daily INDY, split 100:50.
	var aliceIUSD types.IndividualReward
	for _, reward := range rewards {
		if reward.PKH == "alice" && reward.Description == "SP reward for iUSD" {
			aliceIUSD = reward
		}
	}
	assert.InDelta(t, 15574.0/5*100/150, aliceIUSD.Indy, 1e-9)

	assert.InDelta(t, 3188.0/5, rewardByPKH(t, rewards, "dave").Indy, 1e-9)
	assert.Equal(t, "SP reward for iETH", rewardByPKH(t, rewards, "dave").Description)

	for _, reward := range rewards {
		assert.Equal(t, spTestDay, reward.Day)
		assert.Equal(t, epoch.ExpirationTime(spTestDay), reward.Expiration)
	}
}

func TestSPDayRewardsExactly24hIsEligible(t *testing.T) {
	snap := epoch.SnapshotTime(spTestDay)
	engine := newTestEngine(spTestAnalytics(snap), nil)

	rewards, err := engine.SPDayRewards(spTestDay, 22431)
	require.NoError(t, err)

	bob := rewardByPKH(t, rewards, "bob")
	assert.InDelta(t, 15574.0/5*50/150, bob.Indy, 1e-9)

	for _, reward := range rewards {
		assert.NotEqual(t, "carol", reward.PKH)
	}
}

func TestSPDayRewardsMergesDuplicateAccounts(t *testing.T) {
	snap := epoch.SnapshotTime(spTestDay)
	engine := newTestEngine(spTestAnalytics(snap), nil)

	rewards, err := engine.SPDayRewards(spTestDay, 22431)
	require.NoError(t, err)

	var aliceIBTC []types.IndividualReward
	for _, reward := range rewards {
		if reward.PKH == "alice" && reward.Description == "SP reward for iBTC" {
			aliceIBTC = append(aliceIBTC, reward)
		}
	}
	require.Len(t, aliceIBTC, 1)
	assert.InDelta(t, 3668.0/5, aliceIBTC[0].Indy, 1e-9)
}

func TestSPDayRewardsStakedAssetWithoutRewardsFails(t *testing.T) {
	snap := epoch.SnapshotTime(spTestDay)
	api := spTestAnalytics(snap)
	// iSOL predates its whitelisting here, so the account is eligible but
	// the fixed weight table has no iSOL share.
	api.spAccounts = append(api.spAccounts, types.StabilityPoolAccountRecord{
		Asset: "iSOL", Owner: "eve", AssetStaked: 1_000_000, OpenedAt: snap.Add(-time.Hour).Unix(),
	})
	engine := newTestEngine(api, nil)

	_, err := engine.SPDayRewards(spTestDay, 22431)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iSOL")
}

func TestSPEpochRewards(t *testing.T) {
	snap := epoch.SnapshotTime(epoch.SnapshotDates(451)[0])
	api := spTestAnalytics(snap)
	// Drop the accounts whose opening time is day-dependent.
	api.spAccounts = append(api.spAccounts[:1], api.spAccounts[3:]...)
	engine := newTestEngine(api, nil)

	rewards, err := engine.SPEpochRewards(451, 22431)
	require.NoError(t, err)

	// Three merged accounts per day, five days.
	require.Len(t, rewards, 15)

	days := make(map[time.Time]int)
	for _, reward := range rewards {
		days[reward.Day]++
	}
	require.Len(t, days, 5)
	for _, day := range epoch.SnapshotDates(451) {
		assert.Equal(t, 3, days[day])
	}
}

func TestSPEpochRewardsReconcilesAllocatedBudget(t *testing.T) {
	snap := epoch.SnapshotTime(epoch.SnapshotDates(451)[0])
	api := spTestAnalytics(snap)
	api.spAccounts = append(api.spAccounts[:1], api.spAccounts[3:]...)
	engine := newTestEngine(api, nil)

	rewards, err := engine.SPEpochRewards(451, 22431)
	require.NoError(t, err)

	// The 2023-11-06 weight table allocates 22430 of the 22431 emission,
	// so the total reconciles against the allocated sum.
	sum := utils.LovelacesToIndy(types.SumLovelaces(rewards))
	assert.InDelta(t, 22430, sum, sumTolerance)
}

func TestIsAtLeast24hOld(t *testing.T) {
	snap := epoch.SnapshotTime(spTestDay)

	for _, tc := range []struct {
		openedAt int64
		want     bool
	}{
		{snap.Add(-25 * time.Hour).Unix(), true},
		{snap.Add(-24 * time.Hour).Unix(), true},
		{snap.Add(-24*time.Hour + time.Second).Unix(), false},
		{snap.Unix(), false},
	} {
		account := types.StabilityPoolAccountRecord{Asset: "iUSD", OpenedAt: tc.openedAt}
		old, err := isAtLeast24hOld(account, spTestDay)
		require.NoError(t, err)
		assert.Equal(t, tc.want, old, "opened at %d", tc.openedAt)
	}
}

func TestIsAtLeast24hOldISOLExemption(t *testing.T) {
	justOpened := types.StabilityPoolAccountRecord{Asset: "iSOL"}

	// Before the whitelisting day the age rule doesn't apply.
	day := epoch.Date(2024, 11, 20)
	justOpened.OpenedAt = epoch.SnapshotTime(day).Add(-time.Hour).Unix()
	old, err := isAtLeast24hOld(justOpened, day)
	require.NoError(t, err)
	assert.True(t, old)

	day = epoch.Date(2024, 11, 28)
	justOpened.OpenedAt = epoch.SnapshotTime(day).Add(-time.Hour).Unix()
	old, err = isAtLeast24hOld(justOpened, day)
	require.NoError(t, err)
	assert.False(t, old)
}

func TestMergeDuplicateAccounts(t *testing.T) {
	merged := mergeDuplicateAccounts([]types.StabilityPoolAccountRecord{
		{Asset: "iUSD", Owner: "alice", AssetStaked: 100, OpenedAt: 1},
		{Asset: "iUSD", Owner: "alice", AssetStaked: 50, OpenedAt: 2},
		{Asset: "iBTC", Owner: "alice", AssetStaked: 10, OpenedAt: 3},
		{Asset: "iUSD", Owner: "bob", AssetStaked: 7, OpenedAt: 4},
	})

	require.Len(t, merged, 3)
	assert.Equal(t, int64(150), merged[0].AssetStaked)
	assert.Equal(t, int64(0), merged[0].OpenedAt)
	assert.Equal(t, int64(10), merged[1].AssetStaked)
	assert.Equal(t, int64(7), merged[2].AssetStaked)
}
