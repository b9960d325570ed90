package cmd

import (
	"github.com/spf13/cobra"
)

func newPurgeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Purge every cache and rebuild the compiled output",
		Long: `Drop the script path cache, the component type cache and the compiled
output cache, then rebuild the compiled output. The minimum purge interval
does not apply.`,
		Args: cobra.NoArgs,
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

		purgeErr := e.Rebuild(ctx)
		manifest, err := e.Output.Manifest(ctx)
		if err != nil {
			if purgeErr != nil {
				return purgeErr
			}
			return err
		}
		if err := printManifest(cmd, flags, manifest); err != nil {
			return err
		}
		return purgeErr
	}
	return cmd
}
