package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quill/syntax"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show supported file types and their settings",
	Run: func(cmd *cobra.Command, args []string) {
		for _, ft := range syntax.FileTypes() {
			indent := fmt.Sprintf("%d spaces", ft.TabWidth)
			if ft.UseTabs {
				indent = "tabs"
			}
			grammar := ft.LangID
			if grammar == "" {
				grammar = "-"
			}
			fmt.Printf("%-12s %-10s indent: %-10s extensions: %s\n",
				ft.Name, grammar, indent, strings.Join(ft.Extensions, " "))
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
