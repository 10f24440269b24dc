package cmd

import (
	"github.com/nsf/termbox-go"
	"github.com/spf13/cobra"

	"quill/clip"
	"quill/edit"
	"quill/tui"
)

var (
	rootCmd = &cobra.Command{
		Use:          "quill [files...]",
		Short:        "quill",
		SilenceUsage: true,
		Long:         `A terminal code editor with multiple cursors, tree-sitter highlighting and regex search.`,
		RunE:         runEditor,
	}

	configPath string
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the YAML config file")
	return rootCmd.Execute()
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig(configPath)
	cfg.SetupLogging()

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputAlt)
	termbox.SetOutputMode(termbox.Output256)

	var clipboard edit.Clipboard
	if cfg.SystemClipboard {
		clipboard = clip.NewSystem()
	} else {
		clipboard = clip.NewMemory()
	}

	editor := tui.NewEditor(tui.LoadTheme(cfg.ThemePath), clipboard)
	for _, filename := range args {
		if err := editor.OpenFile(filename); err != nil {
			termbox.Close()
			return err
		}
	}

	editor.Run()
	return nil
}
