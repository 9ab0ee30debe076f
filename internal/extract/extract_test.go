package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmill-engine/internal/richtext"
)

func parseFragment(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb  c  "))
	assert.Equal(t, "", CleanText("   \n"))
}

func TestHTMLText(t *testing.T) {
	sel := parseFragment(t, `
		<div id="job">
			<h2>About the role</h2>
			<script>track();</script>
			<style>.x{color:red}</style>
			<p>We build pipelines.</p>
			<p>This vacancy was ORIGINALLY PUBLISHED on ExampleBoard.</p>
			<ul><li><p>Go experience</p></li><li>SQL</li></ul>
		</div>`)

	got := HTMLText(sel, []string{"originally published on exampleboard"})
	want := "About the role\n\nWe build pipelines.\n\nGo experience\n\nSQL"
	assert.Equal(t, want, got)
}

func TestHTMLTextNoBlocks(t *testing.T) {
	sel := parseFragment(t, `<div>just   some <b>text</b></div>`)
	assert.Equal(t, "just some text", HTMLText(sel, nil))
}

func TestHTMLTextBoilerplateOnlyMatchesParagraphs(t *testing.T) {
	sel := parseFragment(t, `<h2>Posted via ExampleBoard</h2><p>Real content.</p>`)
	got := HTMLText(sel, []string{"exampleboard"})
	assert.Equal(t, "Posted via ExampleBoard\n\nReal content.", got)
}

func TestFlattenRichText(t *testing.T) {
	para := func(text string) richtext.Node {
		return richtext.Node{Type: richtext.KindParagraph, Content: []richtext.Node{{Type: richtext.KindText, Text: text}}}
	}
	item := func(blocks ...richtext.Node) richtext.Node {
		return richtext.Node{Type: richtext.KindListItem, Content: blocks}
	}

	doc := richtext.Node{
		Type: richtext.KindDoc,
		Content: []richtext.Node{
			{Type: richtext.KindHeading, Content: []richtext.Node{{Type: richtext.KindText, Text: "About us"}}},
			{Type: richtext.KindParagraph, Content: []richtext.Node{
				{Type: richtext.KindText, Text: "We are "},
				{Type: richtext.KindText, Text: "hiring", Marks: []richtext.Mark{{Type: richtext.MarkBold}}},
				{Type: richtext.KindText, Text: " now", Marks: []richtext.Mark{{Type: richtext.MarkItalic}}},
				{Type: richtext.KindText, Text: "."},
			}},
			{Type: richtext.KindBulletList, Content: []richtext.Node{
				item(para("Go")),
				item(para("")), // empty item dropped, consumes no bullet
				item(para("SQL")),
			}},
			{Type: richtext.KindOrderedList, Content: []richtext.Node{
				item(para("Apply")),
				item(para("Interview")),
			}},
			{Type: "horizontal_rule"}, // unknown kind dropped
			{Type: richtext.KindParagraph},
		},
	}

	want := "About us\n\n" +
		"We are **hiring** *now*.\n\n" +
		"• Go\n• SQL\n\n" +
		"1. Apply\n2. Interview"
	assert.Equal(t, want, FlattenRichText(doc))
}

func TestFlattenRichTextHardBreak(t *testing.T) {
	doc := richtext.Node{
		Type: richtext.KindDoc,
		Content: []richtext.Node{
			{Type: richtext.KindParagraph, Content: []richtext.Node{
				{Type: richtext.KindText, Text: "line one"},
				{Type: richtext.KindHardBreak},
				{Type: richtext.KindText, Text: "line two"},
			}},
		},
	}
	assert.Equal(t, "line one\nline two", FlattenRichText(doc))
}

func TestEmails(t *testing.T) {
	got := Emails("Contact us at jobs@example.eu or hr@example.eu for details")
	assert.Equal(t, []string{"jobs@example.eu", "hr@example.eu"}, got)

	// same address twice keeps only the first occurrence
	got = Emails("jobs@example.eu then hr@example.eu then JOBS@example.eu")
	assert.Equal(t, []string{"jobs@example.eu", "hr@example.eu"}, got)

	assert.Nil(t, Emails("no addresses here"))
}

func TestDiscoverEmails(t *testing.T) {
	sel := parseFragment(t, `
		<div>
			<p>Contact us at jobs@example.eu or hr@example.eu for details</p>
			<a href="mailto:apply@example.eu?subject=Job">Apply</a>
			<span class="contact-email">recruitment@example.eu</span>
		</div>`)

	flattened := "Contact us at jobs@example.eu or hr@example.eu for details"
	got := DiscoverEmails(sel, flattened)
	assert.Equal(t, []string{
		"jobs@example.eu",
		"hr@example.eu",
		"apply@example.eu",
		"recruitment@example.eu",
	}, got)
}
