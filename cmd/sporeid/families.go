// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "List the families the prediction service can recognize",
	RunE:  runFamilies,
}

func runFamilies(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	families, err := a.svc.Families(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(families)
	}
	for _, f := range families {
		fmt.Fprintln(w, f)
	}
	return nil
}

func init() {
	familiesCmd.Flags().Bool("json", false, "output as a JSON array")
	rootCmd.AddCommand(familiesCmd)
}
