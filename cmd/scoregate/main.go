// Command scoregate runs the sports-data caching gateway.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scoregate",
	Short: "Sports-data caching gateway",
	Long: `scoregate aggregates sports data from an upstream provider and serves
it over a REST API, shielding clients from upstream rate limits and
latency. Configuration comes from SCOREGATE_* environment variables.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
