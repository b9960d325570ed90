package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/compile"
	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/services"
)

func newOutputCmd(opts *rootOptions) *cobra.Command {
	var compute bool
	cmd := &cobra.Command{
		Use:   "output LIBRARY TYPE",
		Short: "Print the compiled html, css or js of a library",
		Long: `Print the compiled output of a ui framework, theme or vendor library.

The output cache is built first and the cached file is printed. With
--compute the output is aggregated directly without touching the cache.

Examples:
  thematic output /libs/thematic/ui-frameworks/bootstrap css
  thematic output /libs/thematic/vendor-libraries/jquery js --compute`,
		Args: cobra.ExactArgs(2),
	}
	cmd.Flags().BoolVar(&compute, "compute", false, "aggregate the output without the cache")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		st, err := compile.ParseScriptType(args[1])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}
		lib, err := lookupLibrary(ctx, e, args[0])
		if err != nil {
			return err
		}

		var content string
		if compute {
			content, err = e.Compiler.Output(ctx, lib, st)
		} else {
			if _, buildErr := e.Output.BuildAll(ctx); buildErr != nil {
				cmd.PrintErrln("build:", buildErr)
			}
			content, err = e.Output.GetCachedOutput(ctx, lib.LibraryPath(), st)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	return cmd
}

// lookupLibrary finds the ui framework, theme or vendor library at p.
func lookupLibrary(ctx context.Context, e *services.Engine, p string) (model.Library, error) {
	if fw, err := e.Catalog.ByPath(ctx, p); err == nil {
		return fw, nil
	}
	if theme, err := e.Catalog.ThemeByPath(ctx, p); err == nil {
		return theme, nil
	}
	if lib, err := e.Catalog.VendorLibrary(ctx, p); err == nil {
		return lib, nil
	}
	return nil, errors.ErrResourceNotFound(p).WithContext("expected", "ui framework, theme or vendor library")
}
