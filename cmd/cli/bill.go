package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/spf13/cobra"
)

var billDate string

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Erzeugt Belege für alle fälligen Verträge",
	Long: `Bills every active contract whose next run date is on or before the given
date. Each contract is billed at most once per date, so repeated calls are safe.
Failed contracts are recorded as FAILED runs and do not stop the batch.`,
	Example: `  # bill everything due today
  kmanager bill

  # catch up a specific date
  kmanager bill --date 2026-01-01`,
	Args: cobra.NoArgs,
	RunE: runBill,
}

func init() {
	billCmd.Flags().StringVar(&billDate, "date", "", "Stichtag YYYY-MM-DD (Standard: heute)")
}

func runBill(cmd *cobra.Command, _ []string) error {
	day := model.DateOf(time.Now())
	if billDate != "" {
		d, err := model.ParseDate(billDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", billDate, err)
		}
		day = d
	}

	ctx := service.WithActor(cmd.Context(), "cli")
	results, err := svc.Billing.GenerateDue(ctx, day)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := make([]map[string]interface{}, 0, len(results))
		for _, r := range results {
			row := map[string]interface{}{"contract_id": r.ContractID, "created": r.Created}
			if r.Run != nil {
				row["run"] = service.ToContractRunResponse(r.Run)
			}
			if r.Err != nil {
				row["error"] = r.Err.Error()
			}
			out = append(out, row)
		}
		return enc.Encode(out)
	}

	failed := 0
	for _, r := range results {
		status := "EXISTING"
		switch {
		case r.Err != nil:
			status = "FAILED"
			failed++
		case r.Created:
			status = "CREATED"
		}
		fmt.Printf("%s  %-8s", r.ContractID, status)
		if r.Err != nil {
			fmt.Printf("  %v", r.Err)
		}
		fmt.Println()
	}
	fmt.Printf("%s: %d Verträge, %d fehlgeschlagen\n", day.Format(model.DateLayout), len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d contracts failed", failed)
	}
	return nil
}
