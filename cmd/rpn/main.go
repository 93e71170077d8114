package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rpn [flags] [expression...]",
	Short: "Evaluate infix or postfix arithmetic expressions.",
	Long: `Evaluate each argument as an expression. With no arguments, read
expressions from --in or standard input, or start an interactive session if
standard input is a terminal.`,
	RunE: runRoot,
	// Parse and evaluation errors are reported per expression.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().String("config", "", "YAML file declaring variables, constants, and functions")
	rootCmd.PersistentFlags().Uint("prec", 0, "precision of exponentials and logarithms in bits (0 for float64)")
	rootCmd.PersistentFlags().BoolP("postfix", "p", false, "read expressions in postfix notation")
	rootCmd.PersistentFlags().String("fmt", "", "result formatting string (default %g)")
	rootCmd.PersistentFlags().StringArray("given", nil, "name=value variable definition (any number of times)")
	rootCmd.PersistentFlags().StringArray("define", nil, "name/n=body function definition (any number of times)")
	rootCmd.Flags().String("in", "", "input file (default stdin if no args given)")
	rootCmd.Flags().BoolP("lines", "n", false, "parse separate input lines as separate expressions")
	rootCmd.Flags().Bool("echo", false, "print the postfix form of each expression")
	rootCmd.AddCommand(replCmd)
}
