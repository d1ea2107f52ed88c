// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Classify a photo with the placeholder classifier",
	Long: `Capture stands in for photo identification. No image model is
available, so it picks one of a fixed set of families with a confidence
between 75% and 99%. The result is always added to the history.`,
	RunE: runCapture,
}

func runCapture(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	rec, err := a.svc.CapturePhoto(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	fmt.Fprintf(w, "%s (%.1f%%)\n", rec.Label, rec.Confidence*100)
	return nil
}

func init() {
	captureCmd.Flags().Bool("json", false, "output the record as JSON")
	rootCmd.AddCommand(captureCmd)
}
