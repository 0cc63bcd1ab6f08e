package security

import (
	"strings"
	"testing"
)

func TestSanitize_StripsScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<p>説明</p><script>alert("xss")</script>`)

	if strings.Contains(out, "<script") {
		t.Errorf("script tag must be removed: %q", out)
	}
	if !strings.Contains(out, "<p>説明</p>") {
		t.Errorf("allowed tags should survive: %q", out)
	}
}

func TestSanitize_StripsEventHandlers(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<img src="https://example.com/a.png" onerror="alert(1)" alt="図">`)

	if strings.Contains(out, "onerror") {
		t.Errorf("event handler attributes must be removed: %q", out)
	}
	if !strings.Contains(out, `src="https://example.com/a.png"`) {
		t.Errorf("https image source should survive: %q", out)
	}
}

func TestSanitize_StripsIframe(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<iframe src="https://evil.example.com"></iframe><pre><code>x := 1</code></pre>`)

	if strings.Contains(out, "iframe") {
		t.Errorf("iframe must be removed: %q", out)
	}
	if !strings.Contains(out, "<code>x := 1</code>") {
		t.Errorf("code blocks should survive: %q", out)
	}
}

func TestSanitize_RejectsJavascriptScheme(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<a href="javascript:alert(1)">click</a>`)

	if strings.Contains(out, "javascript:") {
		t.Errorf("javascript scheme must be removed: %q", out)
	}
}

func TestSanitize_KeepsStructuralTags(t *testing.T) {
	s := NewContentSanitizer()

	in := `<h2>ギア比</h2><ul><li><strong>重要</strong></li></ul><table><tbody><tr><td>1</td></tr></tbody></table>`
	out := s.Sanitize(in)

	for _, tag := range []string{"<h2>", "<ul>", "<li>", "<strong>", "<table>", "<td>"} {
		if !strings.Contains(out, tag) {
			t.Errorf("expected %s to survive, got %q", tag, out)
		}
	}
}

func TestSanitize_Empty(t *testing.T) {
	s := NewContentSanitizer()

	if out := s.Sanitize(""); out != "" {
		t.Errorf("empty input should yield empty output, got %q", out)
	}
}

// 同一入力には常に同一出力を返す。再サニタイズで内容が変わらないこと。
func TestSanitize_Deterministic(t *testing.T) {
	s := NewContentSanitizer()

	in := `<p>hello <em>world</em></p>`
	first := s.Sanitize(in)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("sanitization should be stable: %q vs %q", first, second)
	}
}
