package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itsatony/go-tagtree"
	"github.com/spf13/cobra"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	templateName string
	format       string
}

// validateOutput represents JSON output for validate
type validateOutput struct {
	Template string   `json:"template"`
	Valid    bool     `json:"valid"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message,omitempty"`
	Extends  bool     `json:"extends"`
	Blocks   []string `json:"blocks,omitempty"`
}

func newValidateCmd(global *globalOptions) *cobra.Command {
	cfg := &validateConfig{}

	cmd := &cobra.Command{
		Use:   CmdNameValidate,
		Short: CmdShortValidate,
		Example: `  tagtree validate -t page.html
  tagtree validate --template-dir templates -n page.html -F json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(ErrMsgUnexpectedArgs, nil)
			}
			if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
				return usageError(ErrMsgInvalidFormat, nil)
			}
			return runValidate(cmd, global, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.templatePath, FlagTemplate, FlagTemplateShort, "", FlagUsageTemplate)
	cmd.Flags().StringVarP(&cfg.templateName, FlagName, FlagNameShort, "", FlagUsageName)
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, FlagUsageFormat)

	return cmd
}

func runValidate(cmd *cobra.Command, global *globalOptions, cfg *validateConfig) error {
	if err := checkTemplateSource(cfg.templatePath, cfg.templateName); err != nil {
		return err
	}

	var tmpl *tagtree.Template
	var parseErr error
	name := cfg.templateName

	if cfg.templateName != "" {
		engine, cleanup, err := global.newEngine()
		if err != nil {
			return err
		}
		defer cleanup()
		tmpl, parseErr = engine.GetTemplate(cmd.Context(), cfg.templateName)
	} else {
		compiled, cleanup, err := compileFromFile(cmd, global, cfg.templatePath)
		if err != nil {
			return err
		}
		defer cleanup()
		tmpl, parseErr = compiled, compiled.Err()
		name = compiled.Name()
	}

	out := validateOutput{
		Template: name,
		Valid:    parseErr == nil,
		Kind:     tagtree.KindOf(parseErr).String(),
	}
	if parseErr != nil {
		out.Message = parseErr.Error()
	} else {
		out.Extends = tmpl.Extends()
		out.Blocks = tmpl.Blocks()
	}

	stdout := cmd.OutOrStdout()
	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
	} else if out.Valid {
		fmt.Fprintf(stdout, FmtValidOK, out.Template)
		if out.Extends {
			fmt.Fprint(stdout, FmtExtends)
		}
		if len(out.Blocks) > 0 {
			fmt.Fprintf(stdout, FmtBlocks, strings.Join(out.Blocks, ", "))
		}
	} else {
		fmt.Fprintf(stdout, FmtValidFailed, out.Kind, out.Message)
	}

	if !out.Valid {
		return &exitError{code: ExitCodeValidationError}
	}
	return nil
}
