package banner

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"simple", "<html><title>Example</title></html>", "Example"},
		{"no title", "<html><body>hello</body></html>", "None"},
		{"empty body", "", "None"},
		{"empty title", "<title></title>", "None"},
		{"blank title", "<title>   \n </title>", "None"},
		{"trimmed", "<title>\n  Router Login  \n</title>", "Router Login"},
		{"first match only", "<title>One</title><title>Two</title>", "One"},
		{"case sensitive", "<TITLE>Upper</TITLE>", "None"},
		{"unclosed", "<title>Dangling", "Dangling"},
		{"attributes not matched", `<title lang="en">Skipped</title>`, "None"},
		{"unicode", "<title>Панель управления</title>", "Панель управления"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.body); got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestShorten(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"short", "Example", 50, "Example"},
		{"newlines", "a\r\nb\nc", 50, "a b c"},
		{"truncated", "abcdefghij", 4, "abcd..."},
		{"runes", "ÄÖÜäöü", 3, "ÄÖÜ..."},
		{"no limit", "abcdefghij", 0, "abcdefghij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shorten(tt.input, tt.limit); got != tt.want {
				t.Errorf("Shorten(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}
