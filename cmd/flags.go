package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var validFormats = []string{FormatTable, FormatJSON, FormatYAML}

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Output flags
	OutputFormat string `flag:"format,o" desc:"Output format (table|json|yaml)" default:"table"`
	Verbose      bool   `flag:"verbose,v" desc:"Enable verbose output" default:"false"`
	Quiet        bool   `flag:"quiet,q" desc:"Suppress output" default:"false"`
}

// AddStandardFlags adds the output flags to a command
func AddStandardFlags(cmd *cobra.Command) *StandardFlags {
	flags := &StandardFlags{}
	cmd.Flags().VarP(newFormatValue(&flags.OutputFormat), "format", "o", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
	return flags
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	if f.Verbose && f.Quiet {
		return fmt.Errorf("cannot specify both --verbose and --quiet")
	}
	return validateFormat(f.OutputFormat)
}

// Printer returns a printer writing to w in the selected format.
func (f *StandardFlags) Printer(w io.Writer) *Printer {
	if f.Quiet {
		w = io.Discard
	}
	return &Printer{Format: f.OutputFormat, Out: w}
}

func validateFormat(format string) error {
	for _, valid := range validFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q, must be one of: %s", format, strings.Join(validFormats, ", "))
}

// formatValue is a pflag.Value that rejects unknown formats at parse time.
type formatValue struct {
	target *string
}

var _ pflag.Value = (*formatValue)(nil)

func newFormatValue(target *string) *formatValue {
	*target = FormatTable
	return &formatValue{target: target}
}

func (v *formatValue) String() string { return *v.target }

func (v *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := validateFormat(s); err != nil {
		return err
	}
	*v.target = s
	return nil
}

func (v *formatValue) Type() string { return "format" }

// Table is the tabular rendering of a result.
type Table struct {
	Header []string
	Rows   [][]string
}

// Printer renders command results as a table, JSON or YAML.
type Printer struct {
	Format string
	Out    io.Writer
}

// Print writes value as JSON or YAML, or table when the format is table.
func (p *Printer) Print(value interface{}, table Table) error {
	switch p.Format {
	case FormatJSON:
		encoder := json.NewEncoder(p.Out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	case FormatYAML:
		encoder := yaml.NewEncoder(p.Out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return p.table(table)
	}
}

func (p *Printer) table(t Table) error {
	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(w, strings.Join(t.Header, "\t"))
		underline := make([]string, len(t.Header))
		for i, h := range t.Header {
			underline[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(w, strings.Join(underline, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// Printf writes a status line unless the output is structured.
func (p *Printer) Printf(format string, args ...interface{}) {
	if p.Format != FormatTable {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}
