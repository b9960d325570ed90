package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/thematic/internal/errors"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resource"
	"github.com/conneroisu/thematic/internal/services"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resolve",
		Aliases: []string{"r"},
		Short:   "Resolve component types, views and variations",
		Long: `Resolve a component type, its view for a ui framework, the managed
view of a versioned framework, or the variations of a view.

Component types are named by absolute path or relative to the override and
base roots. Frameworks are named by absolute path or by code.

Examples:
  thematic resolve type thematic/components/button
  thematic resolve view thematic/components/button bootstrap --walk
  thematic resolve managed thematic/components/button /libs/thematic/ui-frameworks/bootstrap/versions/5.0.0
  thematic resolve variations thematic/components/button bootstrap --instance /apps/site/page/button1`,
	}
	cmd.AddCommand(
		newResolveTypeCmd(opts),
		newResolveViewCmd(opts),
		newResolveManagedCmd(opts),
		newResolveVariationsCmd(opts),
	)
	return cmd
}

type typeRow struct {
	Path        string   `json:"path" yaml:"path"`
	Title       string   `json:"title" yaml:"title"`
	Group       string   `json:"group,omitempty" yaml:"group,omitempty"`
	SuperType   string   `json:"super_type,omitempty" yaml:"super_type,omitempty"`
	Bypass      bool     `json:"bypass_framework_validation" yaml:"bypass_framework_validation"`
	ExcludedFor []string `json:"excluded_ui_frameworks,omitempty" yaml:"excluded_ui_frameworks,omitempty"`
}

func newTypeRow(ct *model.ComponentType) typeRow {
	return typeRow{
		Path:        ct.Path,
		Title:       ct.Title,
		Group:       ct.Group,
		SuperType:   ct.SuperType,
		Bypass:      ct.BypassFrameworkValidation,
		ExcludedFor: ct.ExcludedUiFrameworks,
	}
}

func typeTable(rows []typeRow) Table {
	t := Table{Header: []string{"PATH", "TITLE", "GROUP", "SUPERTYPE", "BYPASS"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Path, r.Title, r.Group, r.SuperType, strconv.FormatBool(r.Bypass)})
	}
	return t
}

func newResolveTypeCmd(opts *rootOptions) *cobra.Command {
	var lineage bool
	cmd := &cobra.Command{
		Use:   "type NAME",
		Short: "Resolve a component type through the overlay",
		Args:  cobra.ExactArgs(1),
	}
	flags := AddStandardFlags(cmd)
	cmd.Flags().BoolVar(&lineage, "lineage", false, "also list the supertype chain")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}
		ct, err := e.Types.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		types := []*model.ComponentType{ct}
		if lineage {
			types = e.Types.Lineage(ctx, ct)
		}
		rows := make([]typeRow, 0, len(types))
		for _, t := range types {
			rows = append(rows, newTypeRow(t))
		}
		if !lineage {
			return flags.Printer(cmd.OutOrStdout()).Print(rows[0], typeTable(rows))
		}
		return flags.Printer(cmd.OutOrStdout()).Print(rows, typeTable(rows))
	}
	return cmd
}

type viewRow struct {
	Path      string `json:"path" yaml:"path"`
	Title     string `json:"title" yaml:"title"`
	Type      string `json:"component_type" yaml:"component_type"`
	Framework string `json:"ui_framework" yaml:"ui_framework"`
	Common    bool   `json:"common" yaml:"common"`
	Managed   bool   `json:"managed" yaml:"managed"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
}

func printView(cmd *cobra.Command, flags *StandardFlags, v *model.ComponentUiFrameworkView, fw *model.UiFramework) error {
	row := viewRow{
		Path:      v.Path,
		Title:     v.Title,
		Type:      v.OwnerPath(),
		Framework: fw.Path,
		Common:    v.IsCommon(),
		Managed:   v.Managed,
		Version:   v.Version,
	}
	table := Table{
		Header: []string{"VIEW", "COMPONENT TYPE", "UI FRAMEWORK", "COMMON", "MANAGED", "VERSION"},
		Rows: [][]string{{
			row.Path, row.Type, row.Framework,
			strconv.FormatBool(row.Common), strconv.FormatBool(row.Managed), row.Version,
		}},
	}
	return flags.Printer(cmd.OutOrStdout()).Print(row, table)
}

// viewTarget resolves the component type and framework arguments of a view
// command.
func viewTarget(ctx context.Context, e *services.Engine, typeName, fwRef string) (*model.ComponentType, *model.UiFramework, error) {
	ct, err := e.Types.Resolve(ctx, typeName)
	if err != nil {
		return nil, nil, err
	}
	fw, err := lookupFramework(ctx, e, fwRef)
	if err != nil {
		return nil, nil, err
	}
	return ct, fw, nil
}

// lookupFramework finds a framework by absolute path or by code.
func lookupFramework(ctx context.Context, e *services.Engine, ref string) (*model.UiFramework, error) {
	ref = strings.TrimSpace(ref)
	if resource.IsAbs(ref) {
		return e.Catalog.ByPath(ctx, ref)
	}
	return e.Catalog.ByCode(ctx, ref)
}

func newResolveViewCmd(opts *rootOptions) *cobra.Command {
	var walk bool
	cmd := &cobra.Command{
		Use:   "view TYPE FRAMEWORK",
		Short: "Resolve the view of a component type for a ui framework",
		Args:  cobra.ExactArgs(2),
	}
	flags := AddStandardFlags(cmd)
	cmd.Flags().BoolVar(&walk, "walk", false, "fall back to the views of supertypes")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}
		ct, fw, err := viewTarget(ctx, e, args[0], args[1])
		if err != nil {
			return err
		}

		var v *model.ComponentUiFrameworkView
		if walk {
			v, err = e.Views.ViewFor(ctx, ct, fw)
		} else {
			v, err = e.Views.Resolve(ctx, ct, fw)
		}
		if err != nil {
			return err
		}
		return printView(cmd, flags, v, fw)
	}
	return cmd
}

func newResolveManagedCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "managed TYPE FRAMEWORK",
		Short: "Resolve the managed view of a component type for a framework version",
		Args:  cobra.ExactArgs(2),
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
		ct, fw, err := viewTarget(ctx, e, args[0], args[1])
		if err != nil {
			return err
		}
		v, err := e.Views.ResolveManaged(ctx, ct, fw)
		if err != nil {
			return err
		}
		return printView(cmd, flags, v, fw)
	}
	return cmd
}

type variationRow struct {
	Path    string `json:"path" yaml:"path"`
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Class   string `json:"class" yaml:"class"`
	Inline  bool   `json:"inline" yaml:"inline"`
	Default bool   `json:"default" yaml:"default"`
}

func newResolveVariationsCmd(opts *rootOptions) *cobra.Command {
	var instance string
	var defaults bool
	cmd := &cobra.Command{
		Use:   "variations TYPE FRAMEWORK",
		Short: "List the variations of a component view",
		Long: `List the variations of the view a component type resolves to for a ui
framework. With --instance only the variations applied to that component
instance are listed; with --defaults only the default variations.`,
		Args: cobra.ExactArgs(2),
	}
	flags := AddStandardFlags(cmd)
	cmd.Flags().StringVar(&instance, "instance", "", "component instance whose applied variations are listed")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "list only the default variations")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := flags.ValidateFlags(); err != nil {
			return err
		}
		ctx := cmd.Context()
		e, err := openEngine(ctx, cmd, opts)
		if err != nil {
			return err
		}
		ct, fw, err := viewTarget(ctx, e, args[0], args[1])
		if err != nil {
			return err
		}
		v, err := e.Views.ViewFor(ctx, ct, fw)
		if err != nil {
			return err
		}

		var variations []*model.ComponentVariation
		switch {
		case instance != "":
			n, ok := e.Store.Resolve(instance)
			if !ok {
				return errors.ErrResourceNotFound(instance)
			}
			variations = e.Variations.Applied(v, n)
		case defaults:
			variations = e.Variations.Defaults(v)
		default:
			variations = e.Variations.Resolve(v)
		}

		rows := make([]variationRow, 0, len(variations))
		table := Table{Header: []string{"NAME", "CLASS", "INLINE", "DEFAULT", "PATH"}}
		for _, va := range variations {
			rows = append(rows, variationRow{
				Path:    va.Path,
				Name:    va.Name,
				Title:   va.Title,
				Class:   va.Class,
				Inline:  va.Inline,
				Default: va.Default,
			})
			table.Rows = append(table.Rows, []string{
				va.Name, va.Class, strconv.FormatBool(va.Inline), strconv.FormatBool(va.Default), va.Path,
			})
		}
		return flags.Printer(cmd.OutOrStdout()).Print(rows, table)
	}
	return cmd
}
