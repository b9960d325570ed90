package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/version"
)

func newVersionCmd() *cobra.Command {
	var format string
	var short, detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for thematic including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)

Examples:
  thematic version               # Show version
  thematic version --detailed    # Show detailed version info
  thematic version --format json # Output as JSON`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&short, "short", false, "Show short version only")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed version information")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		info := version.Info()
		switch format {
		case FormatJSON, FormatYAML:
			p := &Printer{Format: format, Out: w}
			return p.Print(info, Table{})
		case "text":
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
		}

		switch {
		case short:
			fmt.Fprintln(w, version.Short())
		case detailed:
			fmt.Fprintln(w, version.Detailed())
		default:
			fmt.Fprintf(w, "%s %s\n", version.Name, version.Short())
			if !info.BuildTime.IsZero() {
				fmt.Fprintf(w, "Built: %s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
			}
			fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
			fmt.Fprintf(w, "Platform: %s\n", info.Platform)
		}
		return nil
	}
	return cmd
}
