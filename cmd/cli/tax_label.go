package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var taxLabelCmd = &cobra.Command{
	Use:   "tax-label [customer-id]",
	Short: "Zeigt die steuerliche Einordnung eines Kunden",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid customer id %q", args[0])
		}
		label, err := svc.Catalog.CustomerTaxLabel(cmd.Context(), id)
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(label)
		}
		fmt.Printf("%s (%s)\n", label.Label, label.CountryCode)
		return nil
	},
}
