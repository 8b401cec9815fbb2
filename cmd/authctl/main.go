package main

import (
	"fmt"
	"os"

	"github.com/nexusquery/auth-gateway/cmd/authctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "authctl",
		Short: "Operator tool for the NexusQuery auth gateway",
		Long:  "CLI tool for checking Firebase trust material, inspecting tokens, revoking sessions and listing profiles",
	}

	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewVerifyCmd())
	rootCmd.AddCommand(commands.NewRevokeCmd())
	rootCmd.AddCommand(commands.NewProfilesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
