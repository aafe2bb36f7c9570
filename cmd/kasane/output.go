package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/yacchi/kasane"
	"github.com/yacchi/kasane/layer"
)

func printGet(w io.Writer, root *kasane.Root, key, def string, origin bool) error {
	rv := root.Origin(key)
	if rv.IsMissing() {
		if def == "" {
			return fmt.Errorf("key %q is not set", key)
		}
		fmt.Fprintln(w, def)
		return nil
	}
	if origin {
		fmt.Fprintf(w, "%s\t%s\n", rv.String(), joinPath(rv.Path))
		return nil
	}
	fmt.Fprintln(w, rv.String())
	return nil
}

func printDump(w io.Writer, root *kasane.Root, prefix string, origin bool) {
	for _, key := range root.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rv := root.Origin(key)
		if !rv.Exists {
			continue
		}
		if origin {
			fmt.Fprintf(w, "%s=%s\t# %s\n", key, rv.String(), joinPath(rv.Path))
			continue
		}
		fmt.Fprintf(w, "%s=%s\n", key, rv.String())
	}
}

func printLayers(w io.Writer, root *kasane.Root) {
	for _, child := range root.Composite().Children() {
		printLayer(w, child.Name, child.Layer, 0)
	}
}

func printLayer(w io.Writer, name layer.Name, l layer.Layer, depth int) {
	indent := strings.Repeat("  ", depth)
	kind := layer.KindOf(l)

	if c, ok := l.(*layer.Composite); ok {
		fmt.Fprintf(w, "%s%s (%s)\n", indent, name, kind)
		for _, child := range c.Children() {
			printLayer(w, child.Name, child.Layer, depth+1)
		}
		return
	}
	if e, ok := l.(layer.Enumerable); ok {
		fmt.Fprintf(w, "%s%s (%s, %d keys)\n", indent, name, kind, len(e.Keys()))
		return
	}
	fmt.Fprintf(w, "%s%s (%s)\n", indent, name, kind)
}

func joinPath(path []layer.Name) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = string(n)
	}
	return strings.Join(parts, "/")
}
