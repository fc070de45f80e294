package cleaner

import (
	"strings"
	"testing"
)

func TestApplyCSSSelector_Match(t *testing.T) {
	rawHTML := `<html><body><div class="main"><p>keep me</p></div><footer>drop me</footer></body></html>`

	got, err := ApplyCSSSelector(rawHTML, "div.main")
	if err != nil {
		t.Fatalf("ApplyCSSSelector returned error: %v", err)
	}
	if !strings.Contains(got, "keep me") {
		t.Errorf("selected content missing matched text: %q", got)
	}
	if strings.Contains(got, "drop me") {
		t.Errorf("selected content includes unmatched text: %q", got)
	}
}

func TestApplyCSSSelector_MultipleMatches(t *testing.T) {
	rawHTML := `<html><body><p>one</p><p>two</p><span>skip</span></body></html>`

	got, err := ApplyCSSSelector(rawHTML, "p")
	if err != nil {
		t.Fatalf("ApplyCSSSelector returned error: %v", err)
	}
	if !strings.Contains(got, "one") || !strings.Contains(got, "two") {
		t.Errorf("expected all matched elements, got: %q", got)
	}
	if strings.Contains(got, "skip") {
		t.Errorf("unmatched element leaked into output: %q", got)
	}
}

func TestApplyCSSSelector_NoMatchReturnsOriginal(t *testing.T) {
	rawHTML := `<html><body><p>hello</p></body></html>`

	got, err := ApplyCSSSelector(rawHTML, "div.missing")
	if err != nil {
		t.Fatalf("ApplyCSSSelector returned error: %v", err)
	}
	if got != rawHTML {
		t.Errorf("no-match case should return input unchanged, got: %q", got)
	}
}

func TestApplyCSSSelector_InvalidSelector(t *testing.T) {
	if _, err := ApplyCSSSelector("<p>x</p>", "::!bad"); err == nil {
		t.Error("expected error for invalid selector")
	}
}

func TestExtractContent_RealArticle(t *testing.T) {
	rawHTML := `<html><head><title>Test Article</title></head><body>
		<article>
			<h1>Test Article</h1>
			<p>` + strings.Repeat("This is a real paragraph with enough substance to extract. ", 5) + `</p>
			<p>` + strings.Repeat("And another one to make readability confident. ", 5) + `</p>
		</article>
	</body></html>`

	article, extracted := ExtractContent(rawHTML, "https://example.com/post")
	if !extracted {
		t.Fatal("expected real extraction, got fallback")
	}
	if !strings.Contains(article.TextContent, "real paragraph") {
		t.Errorf("extracted text missing article body: %q", article.TextContent)
	}
}

func TestExtractContent_TooShortFallsBack(t *testing.T) {
	rawHTML := `<html><body><p>tiny</p></body></html>`

	article, extracted := ExtractContent(rawHTML, "https://example.com")
	if extracted {
		t.Error("expected fallback for too-short content")
	}
	// Fallback passes the raw HTML through untouched.
	if article.Content != rawHTML {
		t.Errorf("fallback should carry raw HTML, got: %q", article.Content)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"short word", "hi", 1},
		{"english sentence", strings.Repeat("a", 30), 10},
		{"multibyte runes count as runes", "日本語テキスト", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.in); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestToMarkdown(t *testing.T) {
	conv := NewMarkdownConverter()

	md, err := ToMarkdown(conv, `<h1>Heading</h1><p>Some <strong>bold</strong> text.</p>`, "https://example.com")
	if err != nil {
		t.Fatalf("ToMarkdown returned error: %v", err)
	}
	if !strings.Contains(md, "# Heading") {
		t.Errorf("expected ATX heading in output: %q", md)
	}
	if !strings.Contains(md, "**bold**") {
		t.Errorf("expected bold markup in output: %q", md)
	}
}
