package cmd

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/pagecontext"
)

type scriptRow struct {
	Instance string `json:"instance" yaml:"instance"`
	Script   string `json:"script" yaml:"script"`
	Path     string `json:"path" yaml:"path"`
}

func newScriptCmd(opts *rootOptions) *cobra.Command {
	var page, uiFramework string
	cmd := &cobra.Command{
		Use:   "script INSTANCE SCRIPT",
		Short: "Resolve the render script of a component instance",
		Long: `Resolve the path of a named render script for a component instance.

The effective ui framework comes from the theme property of the page or its
nearest ancestor; --ui-framework names a framework code used when no page in
the chain carries a theme. The page defaults to the instance itself.

Examples:
  thematic script /apps/site/page/button1 body.html
  thematic script /apps/site/page/button1 body.html --page /apps/other --ui-framework bootstrap`,
		Args: cobra.ExactArgs(2),
	}
	flags := AddStandardFlags(cmd)
	cmd.Flags().StringVar(&page, "page", "", "page being rendered (default the instance)")
	cmd.Flags().StringVar(&uiFramework, "ui-framework", "", "framework code used when no page carries a theme")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}

		instance, script := args[0], args[1]
		n, ok := e.Store.Resolve(instance)
		if !ok {
			return errors.ErrResourceNotFound(instance)
		}
		req := pagecontext.Request{PagePath: page, Params: url.Values{}}
		if req.PagePath == "" {
			req.PagePath = n.Path
		}
		if uiFramework != "" {
			req.Params.Set(pagecontext.ParamUiFramework, uiFramework)
		}

		p, err := e.Scripts.GetScriptPath(ctx, n, script, req)
		if err != nil {
			return err
		}
		if flags.Verbose {
			themed, err := e.Pages.Resolve(ctx, req)
			if err == nil {
				cmd.PrintErrf("ui framework %s (%s %s)\n", themed.Framework.Path, themed.Source, themed.From)
			}
		}

		row := scriptRow{Instance: n.Path, Script: script, Path: p}
		table := Table{
			Header: []string{"INSTANCE", "SCRIPT", "PATH"},
			Rows:   [][]string{{row.Instance, row.Script, row.Path}},
		}
		return flags.Printer(cmd.OutOrStdout()).Print(row, table)
	}
	return cmd
}
