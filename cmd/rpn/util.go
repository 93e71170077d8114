package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// getFlag gets an expected flag, or exits if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

// getString gets an expected string, or exits if an error arises.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

// getStringArray gets an expected string array, or exits if an error arises.
func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}

// getUint gets an expected uint, or exits if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return r
}
