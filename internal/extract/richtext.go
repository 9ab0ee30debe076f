package extract

import (
	"fmt"
	"strings"

	"jobmill-engine/internal/richtext"
)

// FlattenRichText renders a rich-text document as plain text with light
// markdown emphasis. Blocks flatten in document order, lists become
// line-prefixed items, unknown block kinds contribute nothing, and blocks
// that flatten to nothing are dropped before the final blank-line join.
func FlattenRichText(doc richtext.Node) string {
	if doc.Type != richtext.KindDoc {
		return flattenBlock(doc)
	}
	blocks := make([]string, 0, len(doc.Content))
	for _, b := range doc.Content {
		if t := flattenBlock(b); t != "" {
			blocks = append(blocks, t)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func flattenBlock(n richtext.Node) string {
	switch n.Type {
	case richtext.KindParagraph, richtext.KindHeading:
		return strings.TrimSpace(inlineText(n))
	case richtext.KindBulletList:
		return listText(n, func(int) string { return "• " })
	case richtext.KindOrderedList:
		return listText(n, func(i int) string { return fmt.Sprintf("%d. ", i+1) })
	default:
		return ""
	}
}

// listText renders one line per non-empty item; empty items do not consume
// a number.
func listText(list richtext.Node, prefix func(int) string) string {
	var lines []string
	for _, item := range list.Content {
		if item.Type != richtext.KindListItem {
			continue
		}
		var parts []string
		for _, b := range item.Content {
			if t := flattenBlock(b); t != "" {
				parts = append(parts, t)
			}
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, prefix(len(lines))+strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

func inlineText(n richtext.Node) string {
	var b strings.Builder
	for _, c := range n.Content {
		switch c.Type {
		case richtext.KindText:
			b.WriteString(markText(c))
		case richtext.KindHardBreak:
			b.WriteString("\n")
		default:
			b.WriteString(inlineText(c))
		}
	}
	return b.String()
}

func markText(n richtext.Node) string {
	t := n.Text
	if t == "" {
		return ""
	}
	if n.HasMark(richtext.MarkBold) {
		t = "**" + t + "**"
	}
	if n.HasMark(richtext.MarkItalic) {
		t = "*" + t + "*"
	}
	return t
}
