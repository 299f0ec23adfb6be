/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/skald/pkg/codec"
)

// thawCmd represents the thaw command
var thawCmd = &cobra.Command{
	Use:   "thaw <input> <output>",
	Short: "Decode a framed skald blob into JSON",
	Long: `Read a framed skald blob from a file (or - for stdin), decode it with
codec.Thaw, and write the result as JSON to a file (or - for stdout).

Example:
  skald thaw value.skald value.json`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		pretty, _ := cmd.Flags().GetBool("pretty")

		blob, err := readArg(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		value, err := codec.Thaw(blob)
		if err != nil {
			return fmt.Errorf("failed to thaw blob: %w", err)
		}

		var output []byte
		if pretty {
			output, err = json.MarshalIndent(value, "", "  ")
		} else {
			output, err = json.Marshal(value)
		}
		if err != nil {
			return fmt.Errorf("failed to encode value as JSON: %w", err)
		}
		output = append(output, '\n')

		if err := writeArg(args[1], output); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(thawCmd)
	thawCmd.Flags().Bool("pretty", false, "Pretty-print the decoded JSON")
}
