package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/model"
)

type themeRow struct {
	Path      string `json:"path" yaml:"path"`
	Name      string `json:"name" yaml:"name"`
	Title     string `json:"title" yaml:"title"`
	Framework string `json:"ui_framework" yaml:"ui_framework"`
	Source    string `json:"source" yaml:"source"`
	Virtual   bool   `json:"virtual" yaml:"virtual"`
	Default   bool   `json:"default" yaml:"default"`
}

func newThemesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes [FRAMEWORK]",
		Short: "List themes",
		Long: `List the themes of every ui framework, or of one framework named by path
or code. A framework version without themes of its own lists the themes it
inherits from an earlier version as virtual themes.

Examples:
  thematic themes
  thematic themes bootstrap --format yaml`,
		Args: cobra.MaximumNArgs(1),
	}
	flags := AddStandardFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}

		var themes []*model.Theme
		if len(args) == 1 {
			fw, err := lookupFramework(ctx, e, args[0])
			if err != nil {
				return err
			}
			themes = e.Catalog.Themes(ctx, fw)
		} else {
			themes = e.Catalog.AllThemes(ctx)
		}

		rows := make([]themeRow, 0, len(themes))
		table := Table{Header: []string{"PATH", "NAME", "UI FRAMEWORK", "VIRTUAL", "DEFAULT"}}
		for _, t := range themes {
			row := themeRow{
				Path:      t.LibraryPath(),
				Name:      t.Name,
				Title:     t.Title,
				Framework: t.Framework.Path,
				Source:    t.SourcePath(),
				Virtual:   t.Virtual,
				Default:   t.IsDefault(),
			}
			rows = append(rows, row)
			table.Rows = append(table.Rows, []string{
				row.Path, row.Name, row.Framework, strconv.FormatBool(row.Virtual), strconv.FormatBool(row.Default),
			})
		}
		return flags.Printer(cmd.OutOrStdout()).Print(rows, table)
	}
	return cmd
}
