package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configService string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "bundlectl",
	Short: "Operator tooling for EchoAdmin VR bundles",
	Long:  `Upload VR asset bundles through the presigned upload flow and preview marker projection from the command line.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configService, "service", "echoadmin-bundlectl", "Service name used for telemetry and config defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(uploadCmd, projectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
