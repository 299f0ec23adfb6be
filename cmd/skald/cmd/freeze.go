/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/skald/pkg/codec"
)

// freezeCmd represents the freeze command
var freezeCmd = &cobra.Command{
	Use:   "freeze <input> <output>",
	Short: "Encode a JSON value into a framed skald blob",
	Long: `Read a JSON value from a file (or - for stdin), encode it with
codec.Freeze, and write the framed skald blob to a file (or - for stdout).

Example:
  skald freeze value.json value.skald
  echo '{"name":"ok"}' | skald freeze - - > value.skald`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// File-oriented command; skip the root command's store initialization.
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		compressor, _ := cmd.Flags().GetString("compressor")
		encryptor, _ := cmd.Flags().GetString("encryptor")
		noHeader, _ := cmd.Flags().GetBool("no-header")

		input, err := readArg(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		var value any
		if err := json.Unmarshal(input, &value); err != nil {
			return fmt.Errorf("failed to parse input as JSON: %w", err)
		}

		opts := freezeOptions(compressor, encryptor, noHeader)
		blob, err := codec.Freeze(value, opts...)
		if err != nil {
			return fmt.Errorf("failed to freeze value: %w", err)
		}

		if err := writeArg(args[1], blob); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		return nil
	},
}

func freezeOptions(compressor, encryptor string, noHeader bool) []codec.Option {
	var opts []codec.Option
	if compressor != "" {
		opts = append(opts, codec.WithCompressor(compressor))
	}
	if encryptor != "" {
		opts = append(opts, codec.WithEncryptor(encryptor))
	}
	if noHeader {
		opts = append(opts, codec.WithNoHeader())
	}
	return opts
}

func readArg(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeArg(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func init() {
	rootCmd.AddCommand(freezeCmd)
	freezeCmd.Flags().String("compressor", "", "Compressor to use (auto, none, lz4, snappy, lzma2); empty for auto-select")
	freezeCmd.Flags().String("encryptor", "", "Encryptor to use; empty for none")
	freezeCmd.Flags().Bool("no-header", false, "Omit the framing header from the output")
}
