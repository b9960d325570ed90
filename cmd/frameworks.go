package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/model"
)

type frameworkRow struct {
	Path            string   `json:"path" yaml:"path"`
	Title           string   `json:"title" yaml:"title"`
	Code            string   `json:"code" yaml:"code"`
	Version         string   `json:"version,omitempty" yaml:"version,omitempty"`
	Managed         bool     `json:"managed" yaml:"managed"`
	VendorLibraries []string `json:"vendor_libraries,omitempty" yaml:"vendor_libraries,omitempty"`
}

func newFrameworkRow(fw *model.UiFramework) frameworkRow {
	return frameworkRow{
		Path:            fw.Path,
		Title:           fw.Title,
		Code:            fw.Code,
		Version:         fw.Version,
		Managed:         fw.Managed,
		VendorLibraries: fw.VendorLibraries,
	}
}

func newFrameworksCmd(opts *rootOptions) *cobra.Command {
	var managed bool
	cmd := &cobra.Command{
		Use:     "frameworks",
		Aliases: []string{"fw"},
		Short:   "List ui frameworks",
		Long: `List every buildable ui framework, override root first. A managed
framework is listed as its versions, latest first. With --managed the
umbrella nodes of versioned frameworks are listed instead.`,
		Args: cobra.NoArgs,
	}
	flags := AddStandardFlags(cmd)
	cmd.Flags().BoolVar(&managed, "managed", false, "list managed frameworks instead of buildable ones")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}

		frameworks := e.Catalog.Frameworks(ctx)
		if managed {
			frameworks = e.Catalog.ManagedFrameworks(ctx)
		}
		rows := make([]frameworkRow, 0, len(frameworks))
		table := Table{Header: []string{"PATH", "CODE", "TITLE", "VERSION", "MANAGED", "VENDOR LIBRARIES"}}
		for _, fw := range frameworks {
			row := newFrameworkRow(fw)
			rows = append(rows, row)
			table.Rows = append(table.Rows, []string{
				row.Path, row.Code, row.Title, row.Version,
				strconv.FormatBool(row.Managed), strings.Join(row.VendorLibraries, ","),
			})
		}
		return flags.Printer(cmd.OutOrStdout()).Print(rows, table)
	}
	return cmd
}
