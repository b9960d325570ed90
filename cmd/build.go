package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/build"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Rebuild the compiled-output cache",
		Long: `Compile every ui framework, vendor library and theme into the output
cache and print the build manifest. A library that fails to build is listed
as a failure and does not stop the others.

Examples:
  thematic build --content ./content
  thematic build --content ./content --format json`,
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

		manifest, err := e.Output.BuildAll(ctx)
		if manifest == nil {
			return err
		}
		if perr := printManifest(cmd, flags, manifest); perr != nil {
			return perr
		}
		return err
	}
	return cmd
}

func printManifest(cmd *cobra.Command, flags *StandardFlags, m *build.Manifest) error {
	p := flags.Printer(cmd.OutOrStdout())
	table := Table{Header: []string{"LIBRARY", "KIND", "TYPE", "SIZE", "FINGERPRINT"}}
	for _, entry := range m.Entries {
		fingerprint := entry.Fingerprint
		if len(fingerprint) > 12 && !flags.Verbose {
			fingerprint = fingerprint[:12]
		}
		table.Rows = append(table.Rows, []string{
			entry.Library, entry.Kind, entry.ScriptType, strconv.Itoa(entry.Size), fingerprint,
		})
	}
	if err := p.Print(m, table); err != nil {
		return err
	}
	p.Printf("\n%d entries after %d attempt(s)\n", len(m.Entries), m.Attempts)
	for _, failure := range m.Failures {
		p.Printf("failed: %s\n", failure)
	}
	return nil
}
