package compile

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/thematic/internal/logging"
	"github.com/conneroisu/thematic/internal/resource"
)

// Compiler turns an authored asset into compiled output.
type Compiler interface {
	Compile(ctx context.Context, st ScriptType, source string, content []byte) ([]byte, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, st ScriptType, source string, content []byte) ([]byte, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, st ScriptType, source string, content []byte) ([]byte, error) {
	return f(ctx, st, source, content)
}

// PassThrough returns assets unchanged.
var PassThrough Compiler = CompilerFunc(func(_ context.Context, _ ScriptType, _ string, content []byte) ([]byte, error) {
	return content, nil
})

// Assets collects the output a node authors directly.
//
// A node's own output for a script type is, in store order, every direct
// file child with the script type's extension and every such file inside a
// direct child folder named after the script type ("css", "js", "html"),
// followed by the externalized file references with that extension.
type Assets struct {
	store    resource.Store
	compiler Compiler
	logger   logging.Logger
}

// NewAssets creates an asset collector. A nil compiler passes assets through.
func NewAssets(store resource.Store, compiler Compiler, logger logging.Logger) *Assets {
	if compiler == nil {
		compiler = PassThrough
	}
	return &Assets{
		store:    store,
		compiler: compiler,
		logger:   logging.OrNop(logger).WithComponent("assets"),
	}
}

// Own returns the compiled own output of the node at p.
func (a *Assets) Own(ctx context.Context, p string, externalized []string, st ScriptType) (string, error) {
	var b strings.Builder
	for _, child := range a.store.Children(p) {
		switch {
		case child.IsFile() && st.Matches(child.Name()):
			if err := a.write(ctx, &b, child, st); err != nil {
				return "", err
			}
		case !child.IsFile() && child.Name() == st.Extension():
			for _, file := range a.store.Children(child.Path) {
				if file.IsFile() && st.Matches(file.Name()) {
					if err := a.write(ctx, &b, file, st); err != nil {
						return "", err
					}
				}
			}
		}
	}
	for _, ref := range externalized {
		n, ok := a.store.Resolve(ref)
		if !ok || !n.IsFile() {
			a.logger.Debug(ctx, "Externalized file not found", "owner", p, "ref", ref)
			continue
		}
		if st.Matches(n.Name()) {
			if err := a.write(ctx, &b, n, st); err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

func (a *Assets) write(ctx context.Context, b *strings.Builder, n *resource.Node, st ScriptType) error {
	out, err := a.compiler.Compile(ctx, st, n.Path, n.Content)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", n.Path, err)
	}
	b.Write(out)
	return nil
}
