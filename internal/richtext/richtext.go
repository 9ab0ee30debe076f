// Package richtext holds the typed block tree returned by the CMS for
// listing bodies. The extractor flattens it; nothing else interprets it.
package richtext

import (
	"encoding/json"
	"fmt"
)

// Block kinds the extractor understands. Anything else flattens to "".
const (
	KindDoc         = "doc"
	KindParagraph   = "paragraph"
	KindHeading     = "heading"
	KindBulletList  = "bullet_list"
	KindOrderedList = "ordered_list"
	KindListItem    = "list_item"
	KindText        = "text"
	KindHardBreak   = "hard_break"
)

// Inline emphasis marks carried by text nodes.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
)

type Mark struct {
	Type string `json:"type"`
}

// Node is one block or inline node. Text is set on text nodes only;
// Content carries children in document order.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Marks   []Mark `json:"marks,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// HasMark reports whether the node carries the given inline mark.
func (n Node) HasMark(mark string) bool {
	for _, m := range n.Marks {
		if m.Type == mark {
			return true
		}
	}
	return false
}

// Parse decodes a rich-text document from its JSON wire form.
func Parse(data []byte) (Node, error) {
	var doc Node
	if err := json.Unmarshal(data, &doc); err != nil {
		return Node{}, fmt.Errorf("decode rich text: %w", err)
	}
	return doc, nil
}
