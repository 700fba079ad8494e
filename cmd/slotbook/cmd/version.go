package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the slotbook CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slotbook version %s\n", version)
		fmt.Println("A slot-based position book and capital-allocation engine")
		fmt.Println("https://github.com/rustyeddy/slotbook")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
