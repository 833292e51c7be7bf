/*

This file shapes reward lists for human and machine consumption: the
export row format the claims system imports, and the per-purpose breakdown
with group and grand totals.

*/

package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/indigo-labs/indy-rewards/internal/epoch"
	"github.com/indigo-labs/indy-rewards/internal/types"
	"github.com/indigo-labs/indy-rewards/internal/utils"
)

const timestampFormat = "2006-01-02 15:04"

// Row is one export entry in the claims import format.
type Row struct {
	// Period is the incrementing counter identifying the claims import.
	Period int
	// Address is the account PaymentKeyHash as a hex string.
	Address string
	// Purpose is the human-readable description, e.g. "SP reward for iUSD".
	Purpose string
	// Date is the snapshot day, e.g. "2023-03-17".
	Date string
	// Amount is INDY in lovelaces, 1000000 means 1 INDY.
	Amount int64
	// Expiration is when the reward stops being claimable.
	Expiration string
	// AvailableAt is when the reward unlocks for claiming.
	AvailableAt string
}

// Rows converts rewards to export rows, preserving order.
func Rows(rewards []types.IndividualReward) []Row {
	rows := make([]Row, 0, len(rewards))
	for _, reward := range rewards {
		epochNumber := epoch.DateToEpoch(reward.Day)
		rows = append(rows, Row{
			Period:      epoch.ImportPeriod(epochNumber),
			Address:     reward.PKH,
			Purpose:     reward.Description,
			Date:        reward.Day.Format("2006-01-02"),
			Amount:      reward.Lovelaces(),
			Expiration:  reward.Expiration.Format(timestampFormat),
			AvailableAt: epoch.UnlockTime(epochNumber).Format(timestampFormat),
		})
	}
	return rows
}

// WriteCSV writes rewards in the claims import CSV format.
func WriteCSV(w io.Writer, rewards []types.IndividualReward) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Period", "Address", "Purpose", "Date", "Amount", "Expiration", "AvailableAt"}); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range Rows(rewards) {
		record := []string{
			strconv.Itoa(row.Period),
			row.Address,
			row.Purpose,
			row.Date,
			strconv.FormatInt(row.Amount, 10),
			row.Expiration,
			row.AvailableAt,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Line is one row of the per-purpose breakdown. Amount is in whole INDY.
type Line struct {
	Purpose string
	Amount  float64
}

// Breakdown sums rewards by purpose, alphabetically. With withTotals set,
// per-category and grand total lines are appended.
func Breakdown(rewards []types.IndividualReward, withTotals bool) []Line {
	sums := make(map[string]int64)
	for _, reward := range rewards {
		sums[reward.Description] += reward.Lovelaces()
	}

	purposes := make([]string, 0, len(sums))
	for purpose := range sums {
		purposes = append(purposes, purpose)
	}
	sort.Strings(purposes)

	lines := make([]Line, 0, len(purposes))
	for _, purpose := range purposes {
		lines = append(lines, Line{Purpose: purpose, Amount: utils.LovelacesToIndy(sums[purpose])})
	}

	if !withTotals || len(lines) == 0 {
		return lines
	}
	return append(lines, totalLines(lines)...)
}

func totalLines(lines []Line) []Line {
	groupSums := make(map[string]float64)
	var grandTotal float64
	for _, line := range lines {
		group, _ := splitPurpose(line.Purpose)
		groupSums[group] += line.Amount
		grandTotal += line.Amount
	}

	groups := make([]string, 0, len(groupSums))
	for group := range groupSums {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	totals := make([]Line, 0, len(groups)+1)
	for _, group := range groups {
		totals = append(totals, Line{Purpose: "Total " + group, Amount: groupSums[group]})
	}
	return append(totals, Line{Purpose: "Total", Amount: grandTotal})
}

// splitPurpose splits a reward description into its category and detail
// parts, e.g. "SP reward for iUSD" gives ("SP reward", "iUSD").
func splitPurpose(purpose string) (string, string) {
	if strings.HasPrefix(purpose, "Reward for providing ") {
		fields := strings.Fields(purpose)
		return "LP reward", fields[3] + " on " + fields[len(fields)-1]
	}
	if detail, ok := strings.CutPrefix(purpose, "SP reward for "); ok {
		return "SP reward", detail
	}
	return purpose, ""
}
