package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("could not get flag %q: %v", name, err))
	}
	return value
}

func mustGetInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("could not get flag %q: %v", name, err))
	}
	return value
}
