package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes m as plain text, one block per node.
func WriteText(w io.Writer, m Model) error {
	var b strings.Builder

	fmt.Fprintln(&b, m.Summary)

	for _, n := range m.Nodes {
		b.WriteByte('\n')

		if n.Kind == KindNoCards {
			fmt.Fprintf(&b, "%s\n  %s\n", n.Title, n.Message)
			continue
		}

		b.WriteString(n.Title)
		for _, badge := range n.Badges {
			fmt.Fprintf(&b, " [%s]", badge.Label)
		}
		b.WriteByte('\n')

		for _, f := range n.Fields {
			fmt.Fprintf(&b, "  %-21s %s\n", f.Label+":", f.Value)
		}

		if n.BBox != nil {
			fmt.Fprintf(&b, "  %-21s X: %d  Y: %d  Width: %d  Height: %d\n",
				"Bounding Box:", n.BBox.X, n.BBox.Y, n.BBox.Width, n.BBox.Height)
		}

		if len(n.Texts) > 0 {
			fmt.Fprintln(&b, "  All Detected Text:")
			for _, t := range n.Texts {
				fmt.Fprintf(&b, "    %s (%s)\n", t.Quoted, t.Confidence)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
