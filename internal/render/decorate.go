// Package render decorates rendered component markup with the classes of
// the variations applied to a component instance.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/model"
	"github.com/conneroisu/thematic/internal/resolver"
	"github.com/conneroisu/thematic/internal/resource"
)

// Decorator applies variations to rendered markup.
type Decorator struct {
	variations *resolver.VariationResolver
	logger     logging.Logger
}

// NewDecorator creates a decorator.
func NewDecorator(variations *resolver.VariationResolver, logger logging.Logger) *Decorator {
	return &Decorator{
		variations: variations,
		logger:     logging.OrNop(logger).WithComponent("decorator"),
	}
}

// Classes splits the applied variations of instance into wrapper and inline
// class lists, both in variation order.
func (d *Decorator) Classes(view *model.ComponentUiFrameworkView, instance *resource.Node) (wrapper, inline []string) {
	for _, v := range d.variations.Applied(view, instance) {
		if v.Wrapper() {
			wrapper = append(wrapper, v.Class)
		} else {
			inline = append(inline, v.Class)
		}
	}
	return wrapper, inline
}

// Decorate returns a component that renders inner with the applied inline
// variation classes added to its first element and, when wrapper
// variations apply, inside a div carrying their classes.
func (d *Decorator) Decorate(view *model.ComponentUiFrameworkView, instance *resource.Node, inner templ.Component) templ.Component {
	wrapper, inline := d.Classes(view, instance)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := inner.Render(ctx, &buf); err != nil {
			return err
		}

		markup := buf.String()
		if len(inline) > 0 {
			decorated, err := AddClasses(markup, inline)
			if err != nil {
				d.logger.Warn(ctx, err, "Inline variations not applied", "view", view.Path)
			} else {
				markup = decorated
			}
		}

		if len(wrapper) == 0 {
			_, err := io.WriteString(w, markup)
			return err
		}
		_, err := fmt.Fprintf(w, `<div class="%s">%s</div>`,
			template.HTMLEscapeString(strings.Join(wrapper, " ")), markup)
		return err
	})
}

// AddClasses adds classes to the first element of an HTML fragment. Classes
// already present are not repeated. Markup without an element is returned
// unchanged.
func AddClasses(markup string, classes []string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}

	var first *html.Node
	for _, n := range nodes {
		if first = firstElement(n); first != nil {
			break
		}
	}
	if first == nil {
		return markup, nil
	}
	mergeClasses(first, classes)

	var out strings.Builder
	for _, n := range nodes {
		if err := html.Render(&out, n); err != nil {
			return "", fmt.Errorf("rendering markup: %w", err)
		}
	}
	return out.String(), nil
}

func firstElement(n *html.Node) *html.Node {
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if el := firstElement(c); el != nil {
			return el
		}
	}
	return nil
}

func mergeClasses(n *html.Node, classes []string) {
	idx := -1
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			idx = i
			break
		}
	}

	var existing []string
	if idx >= 0 {
		existing = strings.Fields(n.Attr[idx].Val)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	for _, c := range classes {
		if c != "" && !have[c] {
			existing = append(existing, c)
			have[c] = true
		}
	}

	value := strings.Join(existing, " ")
	if idx >= 0 {
		n.Attr[idx].Val = value
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: value})
}
