package main

import (
	"github.com/itsatony/go-tagtree"
	"github.com/spf13/cobra"
)

// globalOptions holds the flags shared by every command
type globalOptions struct {
	configPath   string
	templateDirs []string
	scriptDirs   []string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     CLIName,
		Short:   CLIShort,
		Long:    CLILong,
		Version: tagtree.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, FlagConfig, FlagConfigShort, "", FlagUsageConfig)
	rootCmd.PersistentFlags().StringArrayVar(&opts.templateDirs, FlagTemplateDir, nil, FlagUsageTemplateDir)
	rootCmd.PersistentFlags().StringArrayVar(&opts.scriptDirs, FlagScriptDir, nil, FlagUsageScriptDir)
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, FlagLogLevel, "", FlagUsageLogLevel)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err.Error(), nil)
	})

	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
