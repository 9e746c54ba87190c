package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/josephgoksu/prpflow/internal/ghaction"
	"github.com/josephgoksu/prpflow/internal/ui"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// emitOutputs appends outs to $GITHUB_OUTPUT when set, then prints them to
// w in the --output format.
func emitOutputs(w io.Writer, outs *ghaction.Outputs) error {
	if path := os.Getenv(ghaction.EnvOutput); path != "" {
		if err := outs.AppendTo(hostFs, path); err != nil {
			return fmt.Errorf("write step outputs: %w", err)
		}
		slog.Debug("wrote step outputs", "path", path, "keys", outs.Keys())
	}
	return printOutputs(w, outs, GetConfig().Output)
}

func printOutputs(w io.Writer, outs *ghaction.Outputs, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return printJSON(w, outs.Map())
	case "yaml":
		return printYAML(w, outs)
	default:
		return printText(w, outs)
	}
}

// printYAML keeps insertion order by building the mapping node directly.
// Values are tagged as strings so found stays "true", matching $GITHUB_OUTPUT.
func printYAML(w io.Writer, outs *ghaction.Outputs) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range outs.Keys() {
		v, _ := outs.Get(k)
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v},
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func printText(w io.Writer, outs *ghaction.Outputs) error {
	styled := isTerminal(w)
	for _, k := range outs.Keys() {
		v, _ := outs.Get(k)
		line := k + "=" + v
		if styled {
			style := ui.StyleValue
			if k == ghaction.KeyFound {
				style = ui.BoolStyle(v)
			}
			line = ui.KeyValue(k, v, style)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
