package cmd

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/pagecontext"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var page, uiFramework string
	cmd := &cobra.Command{
		Use:   "render INSTANCE [SCRIPT]",
		Short: "Render a component instance with its variations applied",
		Long: `Render the markup of a component instance. The script (default body.html)
is resolved like the script command; the instance must be allowed inside its
parent component. Wrapper variations wrap the markup in a div, inline
variations are added to its first element.

Examples:
  thematic render /apps/site/page/button1
  thematic render /apps/site/page/button1 body.html --ui-framework bootstrap`,
		Args: cobra.RangeArgs(1, 2),
	}
	cmd.Flags().StringVar(&page, "page", "", "page being rendered (default the instance)")
	cmd.Flags().StringVar(&uiFramework, "ui-framework", "", "framework code used when no page carries a theme")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}

		n, ok := e.Store.Resolve(args[0])
		if !ok {
			return errors.ErrResourceNotFound(args[0])
		}
		script := "body.html"
		if len(args) > 1 {
			script = args[1]
		}
		req := pagecontext.Request{PagePath: page, Params: url.Values{}}
		if uiFramework != "" {
			req.Params.Set(pagecontext.ParamUiFramework, uiFramework)
		}

		c, err := e.Renderer.Render(ctx, n, script, req)
		if err != nil {
			return err
		}
		return c.Render(ctx, cmd.OutOrStdout())
	}
	return cmd
}
