package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/itsatony/go-tagtree"
	"github.com/spf13/cobra"
)

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   CmdNameVersion,
		Short: CmdShortVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			switch format {
			case OutputFormatText:
				fmt.Fprintf(stdout, VersionTextTemplate, tagtree.Version, runtime.Version())
			case OutputFormatJSON:
				jsonBytes, _ := json.MarshalIndent(versionOutput{
					Version:   tagtree.Version,
					GoVersion: runtime.Version(),
				}, "", "  ")
				fmt.Fprintln(stdout, string(jsonBytes))
			default:
				return usageError(ErrMsgInvalidFormat, nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, FlagFormat, FlagFormatShort, FlagDefaultFormat, FlagUsageFormat)
	return cmd
}
