// ./cmd/rewards/commands.go
package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/indigo-labs/indy-rewards/internal/analyzer"
	"github.com/indigo-labs/indy-rewards/internal/config"
	"github.com/indigo-labs/indy-rewards/internal/datafetcher"
	"github.com/indigo-labs/indy-rewards/internal/state"
	"github.com/indigo-labs/indy-rewards/internal/types"
)

func init() {
	rootCmd.AddCommand(
		newLPCommand(),
		newLPAPRCommand(),
		newLPSummaryCommand(),
		newSPCommand(),
		newSPAPRCommand(),
		newGovCommand(),
		newAllCommand(),
		newSummaryCommand(),
		newVolatilityCommand(),
	)
}

func addPKHFlag(cmd *cobra.Command, pkhs *[]string) {
	cmd.Flags().StringSliceVar(pkhs, "pkh", nil, "Filter by the start of one or more PKHs.")
}

func addOutfileFlag(cmd *cobra.Command, outfile *string) {
	cmd.Flags().StringVarP(outfile, "outfile", "o", "", "Output CSV file.")
}

func addIndyFlag(cmd *cobra.Command, value *float64, name, help string) {
	cmd.Flags().Float64Var(value, name, 0, help+" Defaults to the emission schedule.")
}

// saveAuditRun records a finished calculation when the audit database is
// configured. Failures are logged, not fatal, the rewards are already on
// stdout or in the CSV.
func saveAuditRun(command string, target epochOrDate, spIndy, lpIndy, govIndy float64, rewards []types.IndividualReward) {
	if state.DB == nil {
		return
	}
	info := state.RunInfo{
		Command:      command,
		SPEpochIndy:  spIndy,
		LPEpochIndy:  lpIndy,
		GovEpochIndy: govIndy,
	}
	if target.day != nil {
		info.Day = target.day
	} else {
		epochNumber := target.epoch
		info.Epoch = &epochNumber
	}
	if _, err := state.SaveRewardRun(info, rewards); err != nil {
		log.Warn().Err(err).Str("command", command).Msg("Failed to save reward run to audit database")
	}
}

func newLPCommand() *cobra.Command {
	var indy float64
	var pkhs []string
	var outfile string

	cmd := &cobra.Command{
		Use:   "lp EPOCH_OR_DATE",
		Short: "Print or save liquidity pool token staking rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := errorOnLPMovedToDex(target); err != nil {
				return err
			}

			lpIndy := resolveIndy(indy, target, func(int) float64 { return config.LPEpochINDY })
			_, engine := newEngine(appConfig)

			var rewards []types.IndividualReward
			if target.day != nil {
				rewards, err = engine.LPDayRewards(*target.day, lpIndy)
			} else {
				rewards, err = engine.LPEpochRewards(target.epoch, lpIndy)
			}
			if err != nil {
				return err
			}

			if rewards, err = filterByPKH(rewards, pkhs); err != nil {
				return err
			}
			saveAuditRun("lp", target, 0, lpIndy, 0, rewards)
			return outputRewards(rewards, outfile)
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	addPKHFlag(cmd, &pkhs)
	addOutfileFlag(cmd, &outfile)
	return cmd
}

func newLPAPRCommand() *cobra.Command {
	var indy float64

	cmd := &cobra.Command{
		Use:   "lp-apr EPOCH_OR_DATE",
		Short: "Print LP token staking INDY-based APRs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := errorOnLPMovedToDex(target); err != nil {
				return err
			}

			lpIndy := resolveIndy(indy, target, func(int) float64 { return config.LPEpochINDY })
			calc := newAPRCalculator(appConfig)

			aprs, err := calc.LPEpochAPRs(target.effectiveEpoch(), lpIndy, target.day)
			if err != nil {
				return err
			}
			printLPAPRs(aprs)
			return nil
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	return cmd
}

func newLPSummaryCommand() *cobra.Command {
	var indy float64

	cmd := &cobra.Command{
		Use:   "lp-summary START_DATE END_DATE",
		Short: "Print LP summaries between two dates, both inclusive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			end, err := parseDateArg(args[1])
			if err != nil {
				return err
			}
			if start.After(end) {
				return fmt.Errorf("start date can't be after the end")
			}

			totalDays := int(end.Sub(start).Hours()/24) + 1
			fmt.Printf("Number of days: %d\n", totalDays)

			lpIndy := indy
			if lpIndy <= 0 {
				lpIndy = config.LPEpochINDY
			}
			_, engine := newEngine(appConfig)

			var rewards []types.LiquidityPoolReward
			for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
				dayRewards, err := engine.LPPoolRewards(day, lpIndy)
				if err != nil {
					return err
				}
				rewards = append(rewards, dayRewards...)
			}

			printDexRewardsGrouped(rewards)
			return nil
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	return cmd
}

func newSPCommand() *cobra.Command {
	var indy float64
	var pkhs []string
	var outfile string

	cmd := &cobra.Command{
		Use:   "sp EPOCH_OR_DATE",
		Short: "Print or save stability pool staking rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := ensurePolygonKey(appConfig, target, false); err != nil {
				return err
			}

			spIndy := resolveIndy(indy, target, config.SPEpochEmission)
			_, engine := newEngine(appConfig)

			var rewards []types.IndividualReward
			if target.day != nil {
				rewards, err = engine.SPDayRewards(*target.day, spIndy)
			} else {
				rewards, err = engine.SPEpochRewards(target.epoch, spIndy)
			}
			if err != nil {
				return err
			}

			if rewards, err = filterByPKH(rewards, pkhs); err != nil {
				return err
			}
			saveAuditRun("sp", target, spIndy, 0, 0, rewards)
			return outputRewards(rewards, outfile)
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	addPKHFlag(cmd, &pkhs)
	addOutfileFlag(cmd, &outfile)
	return cmd
}

func newSPAPRCommand() *cobra.Command {
	var indy float64

	cmd := &cobra.Command{
		Use:   "sp-apr EPOCH_OR_DATE",
		Short: "Print SP staking INDY-based APRs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := ensurePolygonKey(appConfig, target, false); err != nil {
				return err
			}

			spIndy := resolveIndy(indy, target, config.SPEpochEmission)
			calc := newAPRCalculator(appConfig)

			var aprs map[types.StabilityPool]float64
			if target.day != nil {
				aprs, err = calc.SPDailyAPRs(*target.day, spIndy, nil)
			} else {
				aprs, err = calc.SPEpochAPRs(target.epoch, spIndy)
			}
			if err != nil {
				return err
			}
			printSPAPRs(aprs)
			return nil
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	return cmd
}

func newGovCommand() *cobra.Command {
	var indy float64
	var pkhs []string
	var outfile string

	cmd := &cobra.Command{
		Use:   "gov EPOCH",
		Short: "Print or save INDY governance staking rewards",
		Long: "Print or save INDY governance staking rewards.\n\n" +
			"EPOCH: Epoch to get rewards for. Technically it's the epoch end snapshot that counts.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if target.day != nil {
				return fmt.Errorf("gov takes an epoch number, not a date")
			}

			govIndy := resolveIndy(indy, target, config.GovEpochEmission)
			_, engine := newEngine(appConfig)

			rewards, err := engine.GovEpochRewards(target.epoch, govIndy)
			if err != nil {
				return err
			}

			if rewards, err = filterByPKH(rewards, pkhs); err != nil {
				return err
			}
			saveAuditRun("gov", target, 0, 0, govIndy, rewards)
			return outputRewards(rewards, outfile)
		},
	}

	addIndyFlag(cmd, &indy, "indy", "INDY to distribute per epoch.")
	addPKHFlag(cmd, &pkhs)
	addOutfileFlag(cmd, &outfile)
	return cmd
}

func newAllCommand() *cobra.Command {
	var pkhs []string
	var outfile string

	cmd := &cobra.Command{
		Use:   "all EPOCH_OR_DATE",
		Short: "Print or save SP, LP and governance staking rewards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := ensurePolygonKey(appConfig, target, false); err != nil {
				return err
			}

			epochNumber := target.effectiveEpoch()
			spIndy := config.SPEpochEmission(epochNumber)
			govIndy := config.GovEpochEmission(epochNumber)
			_, engine := newEngine(appConfig)

			var rewards []types.IndividualReward
			if target.day != nil {
				rewards, err = engine.DayAllRewards(*target.day, spIndy, config.LPEpochINDY, govIndy)
			} else {
				rewards, err = engine.EpochAllRewards(target.epoch, spIndy, config.LPEpochINDY, govIndy)
			}
			if err != nil {
				return err
			}

			if rewards, err = filterByPKH(rewards, pkhs); err != nil {
				return err
			}
			saveAuditRun("all", target, spIndy, config.LPEpochINDY, govIndy, rewards)
			return outputRewards(rewards, outfile)
		},
	}

	addPKHFlag(cmd, &pkhs)
	addOutfileFlag(cmd, &outfile)
	return cmd
}

func newSummaryCommand() *cobra.Command {
	var spIndy, lpIndy, govIndy float64
	var pkhs []string

	cmd := &cobra.Command{
		Use:   "summary EPOCH_OR_DATE",
		Short: "Print summary of all rewards for a given epoch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseEpochOrDate(args[0])
			if err != nil {
				return err
			}
			if err := ensurePolygonKey(appConfig, target, false); err != nil {
				return err
			}

			sp := resolveIndy(spIndy, target, config.SPEpochEmission)
			lp := resolveIndy(lpIndy, target, func(int) float64 { return config.LPEpochINDY })
			gov := resolveIndy(govIndy, target, config.GovEpochEmission)
			_, engine := newEngine(appConfig)

			var rewards []types.IndividualReward
			if target.day != nil {
				rewards, err = engine.DayAllRewards(*target.day, sp, lp, gov)
			} else {
				rewards, err = engine.EpochAllRewards(target.epoch, sp, lp, gov)
			}
			if err != nil {
				return err
			}

			if rewards, err = filterByPKH(rewards, pkhs); err != nil {
				return err
			}
			printBreakdown(rewards)
			return nil
		},
	}

	addIndyFlag(cmd, &spIndy, "sp-indy", "INDY to distribute to stability pool stakers per epoch.")
	addIndyFlag(cmd, &lpIndy, "lp-indy", "INDY to distribute to LP token stakers per epoch.")
	addIndyFlag(cmd, &govIndy, "gov-indy", "INDY to distribute to INDY governance stakers per epoch.")
	addPKHFlag(cmd, &pkhs)
	return cmd
}

func newVolatilityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volatility IASSET DATE",
		Short: "Print the volatility number for a given iAsset and date",
		Long: "Print the volatility number for a given iAsset and date.\n\n" +
			"IASSET: Single iAsset symbol, e.g. 'iUSD' or 'iBTC' or 'iETH', case insensitive.\n\n" +
			"DATE: UTC day (of the snapshot) to calculate volatility for, e.g. '2022-11-25'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := types.AssetFromString(args[0])
			if err != nil {
				return err
			}
			day, err := parseDateArg(args[1])
			if err != nil {
				return err
			}
			if err := ensurePolygonKey(appConfig, epochOrDate{day: &day}, true); err != nil {
				return err
			}

			calc := analyzer.NewVolatilityCalculator(datafetcher.NewPolygonClient(appConfig))
			volatility, err := calc.AssetVolatility(asset, day)
			if err != nil {
				return err
			}
			fmt.Println(volatility)
			return nil
		},
	}

	return cmd
}
