// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the prediction service is reachable",
	RunE:  runHealth,
}

var errUnavailable = errors.New("prediction service unavailable")

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.svc.Available(cmd.Context()) {
		fmt.Fprintln(cmd.OutOrStdout(), "available")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "unavailable")
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		return errUnavailable
	}
	return nil
}

func init() {
	healthCmd.Flags().Bool("strict", false, "exit non-zero when the service is unavailable")
	rootCmd.AddCommand(healthCmd)
}
