package graph

import (
	"fmt"
	"path"
	"strings"
)

// NodeKind distinguishes the shapes drawn for a file.
type NodeKind string

const (
	KindEntry      NodeKind = "entry"
	KindDocument   NodeKind = "document"
	KindStyleSheet NodeKind = "stylesheet"
)

// Node is one file of the dependency graph. ID is a display path, usually
// relative to the project root.
type Node struct {
	ID      string
	Kind    NodeKind
	Imports []string
}

// GraphOverlay highlights the files touched by an edit.
type GraphOverlay struct {
	Changed    string
	Dependents []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a list of nodes.
// It applies semantic styling:
// - Entry: ((Circle))
// - Stylesheet: [/Parallelogram/]
// - Default: [Rectangle]
// Imports across directories are drawn dotted.
func GenerateMermaid(nodes []Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case KindEntry:
			opener, closer = "((", "))"
		case KindStyleSheet:
			opener, closer = "[/", "/]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer))

		for _, imp := range node.Imports {
			arrow := "-->"
			if path.Dir(node.ID) != path.Dir(imp) {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, sanitizeMermaidID(imp)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on light fills under both themes.
		sb.WriteString("    classDef dependent fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Dependents {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s dependent;\n", safeID))
			}
		}
		if overlay.Changed != "" {
			sb.WriteString(fmt.Sprintf("    class %s changed;\n", sanitizeMermaidID(overlay.Changed)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
