package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Azure/template-analyzer-go/cmd/analyzer/analyze"
)

const version = "alpha"

func init() {
	rootCmd.AddCommand(analyze.Cmd)
}

var rootCmd = &cobra.Command{
	Use:     "analyzer subcommand",
	Short:   "analyzer is a static security analyzer for ARM templates",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
