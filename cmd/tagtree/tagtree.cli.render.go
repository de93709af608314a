package main

import (
	"path/filepath"

	"github.com/itsatony/go-tagtree"
	"github.com/spf13/cobra"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	templateName string
	dataJSON     string
	dataFilePath string
	outputPath   string
}

func newRenderCmd(global *globalOptions) *cobra.Command {
	cfg := &renderConfig{}

	cmd := &cobra.Command{
		Use:   CmdNameRender,
		Short: CmdShortRender,
		Example: `  tagtree render -t page.html -d '{"title": "Home"}'
  tagtree render --template-dir templates -n page.html -f data.yaml
  cat page.html | tagtree render -t - -o out.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(ErrMsgUnexpectedArgs, nil)
			}
			return runRender(cmd, global, cfg)
		},
	}

	cmd.Flags().StringVarP(&cfg.templatePath, FlagTemplate, FlagTemplateShort, "", FlagUsageTemplate)
	cmd.Flags().StringVarP(&cfg.templateName, FlagName, FlagNameShort, "", FlagUsageName)
	cmd.Flags().StringVarP(&cfg.dataJSON, FlagData, FlagDataShort, "", FlagUsageData)
	cmd.Flags().StringVarP(&cfg.dataFilePath, FlagDataFile, FlagDataFileShort, "", FlagUsageDataFile)
	cmd.Flags().StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, FlagUsageOutput)

	return cmd
}

func runRender(cmd *cobra.Command, global *globalOptions, cfg *renderConfig) error {
	if err := checkTemplateSource(cfg.templatePath, cfg.templateName); err != nil {
		return err
	}

	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		return err
	}

	var result string
	if cfg.templateName != "" {
		engine, cleanup, err := global.newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err = engine.RenderNamed(cmd.Context(), cfg.templateName, data)
		if err != nil {
			return failure(ErrMsgRenderFailed, err)
		}
	} else {
		tmpl, cleanup, err := compileFromFile(cmd, global, cfg.templatePath)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err = tmpl.Render(cmd.Context(), data)
		if err != nil {
			return failure(ErrMsgRenderFailed, err)
		}
	}

	if err := writeOutput(cfg.outputPath, []byte(result), cmd.OutOrStdout()); err != nil {
		return failure(ErrMsgWriteOutputFailed, err)
	}
	return nil
}

// checkTemplateSource requires exactly one of a template file and a template name
func checkTemplateSource(path, name string) error {
	switch {
	case path == "" && name == "":
		return usageError(ErrMsgMissingTemplate, nil)
	case path != "" && name != "":
		return usageError(ErrMsgBothTemplateName, nil)
	}
	return nil
}

// compileFromFile reads a template file and compiles it. The file's own
// directory is searched first so relative extends and include names resolve
// next to it. Parse errors are kept in the returned template.
func compileFromFile(cmd *cobra.Command, global *globalOptions, path string) (*tagtree.Template, func(), error) {
	source, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, nil, inputError(ErrMsgReadFileFailed, err)
	}

	name := StdinTemplateName
	var dirs []string
	if path != InputSourceStdin {
		name = filepath.Base(path)
		dirs = append(dirs, filepath.Dir(path))
	}

	engine, cleanup, err := global.newEngine(dirs...)
	if err != nil {
		return nil, nil, err
	}
	return engine.Compile(name, string(source)), cleanup, nil
}
