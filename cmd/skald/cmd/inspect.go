/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/skald/pkg/codec"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <input>",
	Short: "Report header metadata and payload boundaries for a skald blob",
	Long: `Read a blob from a file (or - for stdin) and report its header
metadata, payload boundaries, and whether a full codec.Thaw would succeed,
without requiring the blob to already be decodable.

Example:
  skald inspect value.skald`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readArg(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		report := codec.Inspect(data)

		cmd.Printf("header present:   %v\n", report.HeaderPresent)
		if report.HeaderPresent {
			cmd.Printf("magic:            %q\n", report.Magic)
			cmd.Printf("meta byte:        0x%02x (recognized: %v)\n", report.MetaByte, report.MetaRecognized)
			cmd.Printf("compressor:       %s\n", valueOrNone(report.Compressor))
			cmd.Printf("encryptor:        %s\n", valueOrNone(report.Encryptor))
		}
		cmd.Printf("payload offset:   %d\n", report.PayloadOffset)
		cmd.Printf("payload length:   %d\n", report.PayloadLength)
		cmd.Printf("thaw succeeded:   %v\n", report.ThawSucceeded)
		if report.ThawError != nil {
			cmd.Printf("thaw error:       %v\n", report.ThawError)
		} else {
			cmd.Printf("value:            %#v\n", report.Value)
		}

		return nil
	},
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
