// ./cmd/rewards/output.go
package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/indigo-labs/indy-rewards/internal/summary"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

// filterByPKH keeps rewards whose PKH starts with one of the given prefixes.
// A prefix matching more than one distinct PKH is rejected as ambiguous.
func filterByPKH(rewards []types.IndividualReward, prefixes []string) ([]types.IndividualReward, error) {
	if len(prefixes) == 0 {
		return rewards, nil
	}

	var matching []types.IndividualReward
	for _, prefix := range prefixes {
		seen := make(map[string]bool)
		for _, reward := range rewards {
			if len(reward.PKH) >= len(prefix) && reward.PKH[:len(prefix)] == prefix {
				seen[reward.PKH] = true
			}
		}
		if len(seen) > 1 {
			return nil, fmt.Errorf(
				"PKH start %q matches %d PKHs, please use a longer string", prefix, len(seen))
		}
		for _, reward := range rewards {
			if seen[reward.PKH] {
				matching = append(matching, reward)
			}
		}
	}
	return matching, nil
}

// outputRewards writes a CSV when outfile is set, otherwise prints a table
// to stdout with amounts converted to whole INDY.
func outputRewards(rewards []types.IndividualReward, outfile string) error {
	if len(rewards) == 0 {
		fmt.Fprintln(os.Stderr, "No rewards.")
		return nil
	}

	if outfile != "" {
		file, err := os.Create(outfile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outfile, err)
		}
		defer file.Close()
		return summary.WriteCSV(file, rewards)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Period\tAddress\tPurpose\tDate\tAmount\tExpiration\tAvailableAt")
	for _, row := range summary.Rows(rewards) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.6f\t%s\t%s\n",
			row.Period, row.Address, row.Purpose, row.Date,
			utils.LovelacesToIndy(row.Amount), row.Expiration, row.AvailableAt)
	}
	return w.Flush()
}

func printBreakdown(rewards []types.IndividualReward) {
	lines := summary.Breakdown(rewards, true)
	if len(lines) == 0 {
		fmt.Fprintln(os.Stderr, "No rewards.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Purpose\tAmount")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\t%.6f\n", line.Purpose, line.Amount)
	}
	w.Flush()
}

func printLPAPRs(aprs map[types.LiquidityPool]float64) {
	byAsset := make(map[types.Asset]map[types.Dex]float64)
	for pool, apr := range aprs {
		if byAsset[pool.Asset] == nil {
			byAsset[pool.Asset] = make(map[types.Dex]float64)
		}
		byAsset[pool.Asset][pool.Dex] = apr
	}

	assets := make([]types.Asset, 0, len(byAsset))
	for asset := range byAsset {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name() < assets[j].Name() })

	for _, asset := range assets {
		fmt.Printf("\n%s\n", asset.Name())
		dexes := make([]types.Dex, 0, len(byAsset[asset]))
		for dex := range byAsset[asset] {
			dexes = append(dexes, dex)
		}
		sort.Slice(dexes, func(i, j int) bool { return dexes[i].Name() < dexes[j].Name() })
		for _, dex := range dexes {
			fmt.Printf("%s: %.2f%%\n", dex.Name(), byAsset[asset][dex]*100)
		}
	}
}

func printSPAPRs(aprs map[types.StabilityPool]float64) {
	pools := make([]types.StabilityPool, 0, len(aprs))
	for pool := range aprs {
		pools = append(pools, pool)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Asset.Name() < pools[j].Asset.Name() })

	for _, pool := range pools {
		fmt.Printf("%s: %.2f%%\n", pool.Asset.Name(), aprs[pool]*100)
	}
}

func roundTo6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

func sumLPRewards(rewards []types.LiquidityPoolReward, rounded bool) map[types.LiquidityPool]float64 {
	sums := make(map[types.LiquidityPool]float64)
	for _, reward := range rewards {
		if rounded {
			sums[reward.Pool] += roundTo6(reward.Indy)
		} else {
			sums[reward.Pool] += reward.Indy
		}
	}
	return sums
}

// printDexRewardsGrouped prints per-pool INDY totals grouped by dex, with
// each pool's share of the grand total.
func printDexRewardsGrouped(rewards []types.LiquidityPoolReward) {
	summed := sumLPRewards(rewards, false)

	dexGroups := make(map[types.Dex][]types.LiquidityPool)
	var totalIndy float64
	for pool, indy := range summed {
		dexGroups[pool.Dex] = append(dexGroups[pool.Dex], pool)
		totalIndy += indy
	}

	var roundedTotal float64
	for _, indy := range sumLPRewards(rewards, true) {
		roundedTotal += indy
	}
	fmt.Printf("Total: %.6f INDY\n", roundedTotal)

	dexes := make([]types.Dex, 0, len(dexGroups))
	for dex := range dexGroups {
		dexes = append(dexes, dex)
	}
	sort.Slice(dexes, func(i, j int) bool { return dexes[i].Name() < dexes[j].Name() })

	for _, dex := range dexes {
		pools := dexGroups[dex]
		sort.Slice(pools, func(i, j int) bool { return pools[i].Asset.Name() < pools[j].Asset.Name() })

		var dexTotal float64
		for _, pool := range pools {
			dexTotal += roundTo6(summed[pool])
		}
		fmt.Printf("\n%s (Total: %.6f):\n\n", dex.Name(), dexTotal)

		for _, pool := range pools {
			indy := summed[pool]
			percent := indy / totalIndy * 100
			fmt.Printf("- %s %s/%s: %12.6f %5.1f%%\n",
				pool.Dex.Name(), pool.Asset.Name(), pool.OtherAssetName, indy, percent)
		}
	}
}
