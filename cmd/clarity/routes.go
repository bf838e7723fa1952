package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dealershipai/clarity/pkg/router"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show routing rules resolved against the rate card",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RULE\tTASK\tPRIMARY\tFALLBACK")
			for _, r := range router.New(cfg.RateCard).Routes() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Rule, r.Example, r.Primary, orDash(r.Fallback))
			}
			return w.Flush()
		},
	}
}

func rateCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratecard",
		Short: "Show the rate card",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tVENDOR\tMODEL\tTIER\tLATENCY\tIN/1M\tOUT/1M\tCONFIDENCE\tCREDENTIALS")
			for _, b := range cfg.RateCard.Backends {
				creds := "missing"
				if cfg.HasVendor(b.Vendor) {
					creds = "ok"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
					b.ID, b.Vendor, b.Model, tierLabel(b.QualityTier), b.LatencyClass,
					b.CostPerInputUnit, b.CostPerOutputUnit, b.Confidence, creds)
			}
			return w.Flush()
		},
	}
}
