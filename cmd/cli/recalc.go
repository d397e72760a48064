package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gdsanger/KManager-sub000/internal/dto"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var recalcPreview bool

var recalcCmd = &cobra.Command{
	Use:   "recalc [document-id]",
	Short: "Berechnet Positions- und Belegsummen eines Entwurfs neu",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecalc,
}

func init() {
	recalcCmd.Flags().BoolVar(&recalcPreview, "preview", false, "nur berechnen, nicht speichern")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}
	ctx := service.WithActor(cmd.Context(), "cli")

	var totals *dto.TotalsResponse
	if recalcPreview {
		totals, err = svc.Documents.Preview(ctx, id)
	} else {
		totals, err = svc.Documents.Recalculate(ctx, id)
	}
	if err != nil {
		return err
	}

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(totals)
	}
	fmt.Printf("Netto:  %s\nSteuer: %s\nBrutto: %s\n",
		totals.TotalNet.StringFixed(2), totals.TotalTax.StringFixed(2), totals.TotalGross.StringFixed(2))
	if !totals.Persisted {
		fmt.Println("(Vorschau, nicht gespeichert)")
	}
	return nil
}
