// Package render formats tree snapshots for display.
package render

import (
	"fmt"

	"github.com/ammiranda/idtree/models"

	"github.com/goccy/go-yaml"
	"github.com/xlab/treeprint"
)

// Format names an output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a query value onto a Format, defaulting to JSON
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

func label(n *models.Node) string {
	if n.Data == nil {
		return n.ID
	}
	return fmt.Sprintf("%s (%v)", n.ID, n.Data)
}

// Text draws the snapshot as an indented tree
func Text(snapshot *models.Node) string {
	t := treeprint.NewWithRoot(label(snapshot))
	addChildren(t, snapshot)
	return t.String()
}

func addChildren(t treeprint.Tree, n *models.Node) {
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.AddNode(label(c))
			continue
		}
		addChildren(t.AddBranch(label(c)), c)
	}
}

// YAML encodes the snapshot as YAML
func YAML(snapshot *models.Node) ([]byte, error) {
	return yaml.Marshal(snapshot)
}
