package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
	"git.home.luguber.info/inful/mdpo/internal/units"
)

func extractSources(t *testing.T, md string) []string {
	t.Helper()
	store, err := Extract([]byte(md), Options{Document: "test.md"})
	require.NoError(t, err)
	return store.Sources()
}

// Cases follow the numbered examples of the CommonMark 0.29 spec.
func TestExtract_CommonMarkExamples(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want []string
	}{
		{"4 tab indented continuation", "\n- foo\n\n\tbar\n", []string{"foo", "bar"}},
		{"9 nested lists with tabs", "\n - foo\n   - bar\n\t - baz\n", []string{"foo", "bar", "baz"}},
		{"12 list wins over code span", "\n- `one\n- two`\n", []string{"`one", "two`"}},
		{"13 thematic breaks", "\n***\n---\n___\n", nil},
		{"25 not thematic breaks", "\n_ _ _ _ a\n\na------\n\n---a---\n", []string{"_ _ _ _ a", "a------", "---a---"}},
		{"28 paragraphs around a break", "\nFoo\n***\nbar\n", []string{"Foo", "bar"}},
		{"32 atx headings", "\n# foo\n## foo\n", []string{"foo", "foo"}},
		{"34 35 not headings", "\n#5 bolt\n\n#hashtag\n\n\\## foo\n", []string{"#5 bolt", "#hashtag", "## foo"}},
		{"36 inlines in heading", `# foo *bar* \*baz\*`, []string{`foo *bar* \*baz\*`}},
		{"37 heading whitespace", "#                  foo                     ", []string{"foo"}},
		{"42 closing sequence", "# foo ##################################", []string{"foo"}},
		{"44 disqualified closing sequence", "### foo ### b", []string{"foo ### b"}},
		{"49 empty headings", "\n## \n#\n### ###\n", nil},
		{"52 multi-line setext heading", "\n  Foo *bar\nbaz*\t\n====\n", []string{"Foo *bar baz*"}},
		{"60 trailing backslash in setext heading", "\nFoo\\\n----\n", []string{`Foo\`}},
		{
			"61 setext precedence",
			"\n`Foo\n----\n`\n\n<a title=\"a lot\n---\nof dashes\"/>\n",
			[]string{"`Foo", "`", `<a title="a lot`, `of dashes"/>`},
		},
		{"77 indented code", "\n    a simple\n      indented code block\n", nil},
		{"98 fenced code in quote", "\n> ```\n> aaa\n\nbbb\n", []string{"bbb"}},
		{"120 html block text", "\n <div>\n  *hello*\n         <foo><a>\n", []string{"*hello*"}},
		{"122 markdown between html blocks", "\n<DIV CLASS=\"foo\">\n\n*Markdown*\n\n</DIV>\n", []string{"Markdown"}},
		{"138 raw html edges", "<del>*foo*</del>", []string{"*foo*"}},
		{
			"139 140 141 opaque html",
			"\n<pre language=\"haskell\"><code>\nimport Text.HTML.TagSoup\n\nmain :: IO ()\nmain = print $ parseTags tags\n</code></pre>\nokay\n" +
				"<script type=\"text/javascript\">\n// JavaScript example\n\ndocument.getElementById(\"demo\").innerHTML = \"Hello JavaScript!\";\n</script>\nokay\n" +
				"<style\n  type=\"text/css\">\nh1 {color:red;}\n\np {color:blue;}\n</style>\nokay\n",
			[]string{"okay", "okay", "okay"},
		},
		{"161 reference title", "\n[foo]: /url \"title\"\n\n[foo]\n", []string{"foo", "title"}},
		{"165 multi-line title", "\n[foo]: /url '\ntitle\nline1\nline2\n'\n\n[foo]\n", []string{"foo", "\ntitle\nline1\nline2\n"}},
		{"171 title escapes", "\n[foo]: /url\\bar\\*baz \"foo\\\"bar\\baz\"\n\n[foo]\n", []string{"foo", `foo"bar\baz`}},
		{"183 heading link", "\n# [Foo]\n[foo]: /url\n> bar\n", []string{"Foo", "bar"}},
		{"193 paragraph indentation", "\naaa\n             bbb\n                                       ccc\n", []string{"aaa bbb ccc"}},
		{"196 hard break with spaces", "\naaa     \nbbb     \n", []string{"aaa\nbbb"}},
		{"197 blank lines", "\n  \n\naaa\n  \n\n# aaa\n\n  \n", []string{"aaa", "aaa"}},
		{"197 quote with heading", "\n> # Foo\n> bar\n> baz\n", []string{"Foo", "bar baz"}},
		{"214 paragraphs in quote", "\n> foo\n>\n> bar\n", []string{"foo", "bar"}},
		{"226 paragraphs in list item", "\n- one\n\n  two\n", []string{"one", "two"}},
		{"234 code in list item", "\n- Foo\n\n      bar\n\n\n      baz\n", []string{"Foo"}},
		{"253 empty list item", "\n1. foo\n2.\n3. bar\n", []string{"foo", "bar"}},
		{"270 headings in list items", "\n- # Foo\n- Bar\n  ---\n  baz\n", []string{"Foo", "Bar", "baz"}},
		{"297 unmatched backtick", "`hi`lo`", []string{"`hi`lo`"}},
		{"302 hard break with backslash", "\nfoo\\\nbar\n", []string{"foo\nbar"}},
		{"318 entities", "[foo](/f&ouml;&ouml; \"f&ouml;&ouml;\")", []string{"foo", "föö"}},
		{"481 inline link title", "[link](/uri \"title\")", []string{"link", "title"}},
		{"512 link text with inlines", "[*foo **bar** `#`*](/uri)", []string{"foo **bar** `#`"}},
		{"590 autolink", "<http://foo.bar.baz>", nil},
		{
			"621 raw html comments",
			"\nfoo <!-- this is a\ncomment - with hyphen -->\n\n<!-- this is a\ncomment - with hyphen --> bar\n",
			[]string{"foo", "bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractSources(t, tt.md)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_SoftBreakBecomesSpace(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb"}, extractSources(t, "aaa\nbbb\n"))
}

func TestExtract_HardBreaks(t *testing.T) {
	assert.Equal(t, []string{"foo\nbar"}, extractSources(t, "foo\\\nbar\n"))
	assert.Equal(t, []string{"foo\nbar"}, extractSources(t, "foo  \nbar\n"))
	assert.Equal(t, []string{"foo\\\nbar"}, extractSources(t, "foo\\  \nbar\n"))
}

func TestExtract_UnreferencedDefinition(t *testing.T) {
	got := extractSources(t, "Intro\n\n[docs]: https://example.com \"The manual\"\n\nOutro\n")
	assert.Equal(t, []string{"Intro", "docs", "The manual", "Outro"}, got)
}

func TestExtract_DefinitionTitleEmittedOnce(t *testing.T) {
	md := "See [the guide][g].\n\nAgain [the guide][g].\n\n[g]: /guide \"Guide\"\n"
	got := extractSources(t, md)
	assert.Equal(t, []string{"See the guide.", "Guide", "Again the guide."}, got)
}

func TestExtract_DefinitionsMatchedByLabel(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want []string
	}{
		{
			"same destination and title",
			"[a]: /x \"T\"\n[b]: /x \"T\"\n\n[a] and [b]\n",
			[]string{"a and b", "T", "T"},
		},
		{
			"full reference",
			"Read [the manual][docs] first.\n\n[docs]: /manual \"Manual\"\n",
			[]string{"Read the manual first.", "Manual"},
		},
		{
			"collapsed reference",
			"[Docs][] here.\n\n[docs]: /manual \"Manual\"\n",
			[]string{"Docs here.", "Manual"},
		},
		{
			"case and whitespace folded",
			"See [the  Guide][THE guide].\n\n[the guide]: /g\n",
			[]string{"See the Guide."},
		},
		{
			"inline link does not claim a definition",
			"[foo]: /url\n\n[bar](/url)\n",
			[]string{"foo", "bar"},
		},
		{
			"inline link title stays its own",
			"[foo]: /url \"Def\"\n\n[bar](/url \"Def\") and [foo]\n",
			[]string{"bar and foo", "Def", "Def"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSources(t, tt.md))
		})
	}
}

func TestExtract_DuplicateDefinitionFirstWins(t *testing.T) {
	md := "[a]: /one \"First\"\n[a]: /two \"Second\"\n\n[a]\n"
	got := extractSources(t, md)
	assert.Equal(t, []string{"a", "First"}, got)
}

func TestExtract_ImageAltAndTitle(t *testing.T) {
	got := extractSources(t, "![A cat](cat.png \"Sleeping\")\n")
	assert.Equal(t, []string{"A cat", "Sleeping"}, got)
}

func TestExtract_InteriorMarkupPreserved(t *testing.T) {
	got := extractSources(t, "Press <kbd>Ctrl</kbd> or see <https://example.com> and `code`.\n")
	assert.Equal(t, []string{"Press <kbd>Ctrl</kbd> or see <https://example.com> and `code`."}, got)
}

func TestExtract_UnderscoreEmphasisKeepsDelimiter(t *testing.T) {
	got := extractSources(t, "Some _light_ and __heavy__ text.\n")
	assert.Equal(t, []string{"Some _light_ and __heavy__ text."}, got)
}

func TestExtract_EmphasisWithLooseBacktickNotUnwrapped(t *testing.T) {
	got := extractSources(t, "*a ` b*\n")
	assert.Equal(t, []string{"*a ` b*"}, got)
}

func TestExtract_EscapesOutsideInlineSetAreDropped(t *testing.T) {
	got := extractSources(t, `Price \$5 \# \* \_ \a`+"\n")
	assert.Equal(t, []string{`Price $5 # \* \_ \a`}, got)
}

func TestExtract_EscapedAmpersandIsNotAnEntity(t *testing.T) {
	got := extractSources(t, `\&amp; and &amp; and &bogus; and &#35;`+"\n")
	assert.Equal(t, []string{`\&amp; and & and &bogus; and #`}, got)
}

func TestExtract_OpaqueHTMLTagsOption(t *testing.T) {
	md := "<div>\nKeep me\n</div>\n\n<svg>\n<text>Drop me</text>\n</svg>\n"
	store, err := Extract([]byte(md), Options{OpaqueHTMLTags: []string{"SVG"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keep me"}, store.Sources())
	assert.Equal(t, units.KindHTML, store.At(0).Kind)
}

func TestExtract_HTMLBlockEdges(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want []string
	}{
		{"wrapper stripped", "<div>\nPlain &amp; simple\n</div>\n", []string{"Plain & simple"}},
		{"sibling elements kept whole", "<p>one</p>\n<p>two</p>\n", []string{"<p>one</p> <p>two</p>"}},
		{"entities decoded in kept block", "<p>caf&eacute;</p>\n<p>b</p>\n", []string{"<p>café</p> <p>b</p>"}},
		{"enclosing element unwrapped", "<div>\nPress <kbd>Enter</kbd>\n</div>\n", []string{"Press <kbd>Enter</kbd>"}},
		{"nested wrappers", "<div><section>\nA <b>bold</b> move\n</section></div>\n", []string{"A <b>bold</b> move"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSources(t, tt.md))
		})
	}
}

func TestExtract_CommentBlockAlone(t *testing.T) {
	assert.Empty(t, extractSources(t, "<!-- a note for editors -->\n"))
}

func TestExtract_FrontmatterAndLines(t *testing.T) {
	md := "---\ntitle: Hello   world\nweight: 3\n---\n# Heading\n\nBody text\nwraps here.\n"
	store, err := Extract([]byte(md), Options{Document: "guide.md", FrontmatterKeys: []string{"title", "weight"}})
	require.NoError(t, err)

	got := store.Units()
	require.Len(t, got, 3)

	assert.Equal(t, "Hello world", got[0].Source)
	assert.Equal(t, units.KindFrontmatter, got[0].Kind)
	assert.Equal(t, 2, got[0].Location.Line)

	assert.Equal(t, "Heading", got[1].Source)
	assert.Equal(t, units.KindHeading, got[1].Kind)
	assert.Equal(t, 5, got[1].Location.Line)

	assert.Equal(t, "Body text wraps here.", got[2].Source)
	assert.Equal(t, units.KindParagraph, got[2].Kind)
	assert.Equal(t, 7, got[2].Location.Line)
	assert.Equal(t, 2, got[2].Location.Index)
	assert.Equal(t, "guide.md", got[2].Document)
}

func TestExtract_StoreIsFrozen(t *testing.T) {
	store, err := Extract([]byte("Hello\n"), Options{})
	require.NoError(t, err)
	assert.True(t, store.Frozen())
}

func TestExtract_MissingFrontmatterDelimiter(t *testing.T) {
	_, err := Extract([]byte("---\ntitle: x\nBody\n"), Options{Document: "broken.md"})
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryValidation, ce.Category())
	doc, _ := ce.Context().GetString("document")
	assert.Equal(t, "broken.md", doc)
}

func TestExtract_NoCodeInUnits(t *testing.T) {
	md := "Intro\n\n```go\nfmt.Println(\"secret\")\n```\n\n    indented secret\n\nOutro\n"
	got := extractSources(t, md)
	assert.Equal(t, []string{"Intro", "Outro"}, got)
	for _, s := range got {
		assert.NotContains(t, s, "secret")
	}
}

func TestExtract_OrderIsDocumentOrder(t *testing.T) {
	md := "# One\n\n> Two\n\n- Three\n- Four\n\n<p>Five</p>\n\nSix\n"
	assert.Equal(t, []string{"One", "Two", "Three", "Four", "Five", "Six"}, extractSources(t, md))
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewExtractor(Options{}).Extract(ctx, "a.md", []byte("Hello"))
	require.ErrorIs(t, err, context.Canceled)
}
