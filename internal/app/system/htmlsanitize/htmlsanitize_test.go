package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/dalemusser/pactomapa/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	in := "Implantar o comitê municipal da primeira infância"
	if got := htmlsanitize.Sanitize(in); got != in {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_KeepsFormatting(t *testing.T) {
	in := "<p><strong>Plano</strong> <em>municipal</em></p>"
	if got := htmlsanitize.Sanitize(in); got != in {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Olá</p><script>alert('xss')</script>")
	if got != "<p>Olá</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	in := `<a href="https://example.com" onclick="alert(1)">x</a>`
	if got := htmlsanitize.Sanitize(in); strings.Contains(got, "onclick") {
		t.Errorf("expected onclick stripped, got %q", got)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p>Conteúdo</p><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(got, "iframe") {
		t.Error("expected iframe to be removed")
	}
	if !strings.Contains(got, "Conteúdo") {
		t.Error("expected safe content to be preserved")
	}
}

func TestSanitizeToHTML(t *testing.T) {
	if got := htmlsanitize.SanitizeToHTML("<p>Oi</p>"); got != template.HTML("<p>Oi</p>") {
		t.Errorf("got %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	if !htmlsanitize.IsPlainText("sem tags") {
		t.Error("expected plain text")
	}
	if htmlsanitize.IsPlainText("<b>x</b>") {
		t.Error("expected markup to be detected")
	}
}

func TestSafeURL(t *testing.T) {
	tests := map[string]string{
		"https://drive.google.com/file/d/abc/view": "https://drive.google.com/file/d/abc/view",
		"http://example.com/x":                     "http://example.com/x",
		"javascript:alert(1)":                      "",
		"/relative/path":                           "",
		"":                                         "",
		"ftp://example.com/file":                   "",
	}
	for in, want := range tests {
		if got := htmlsanitize.SafeURL(in); got != want {
			t.Errorf("SafeURL(%q) = %q, want %q", in, got, want)
		}
	}
}
