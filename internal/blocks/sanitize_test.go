package blocks

import (
	"strings"
	"testing"
)

func TestSanitizeMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain markup untouched", `<p class="note">hello <em>world</em></p>`, `<p class="note">hello <em>world</em></p>`},
		{"script pair stripped", `before<script type="text/javascript">alert(1)</script>after`, "beforeafter"},
		{"iframe stripped", `<iframe src="https://evil.example"></iframe>ok`, "ok"},
		{"lone script tag stripped", `x<script src="a.js"/>y`, "xy"},
		{"event handler removed", `<a href="/home" onclick="steal()">go</a>`, `<a href="/home">go</a>`},
		{"js protocol removed", `<a href="javascript:alert(1)">x</a>`, `<a href="">x</a>`},
	}
	for _, tc := range cases {
		if got := SanitizeMarkup(tc.in); got != tc.want {
			t.Fatalf("%s: want %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestSanitizeMarkup_CaseInsensitive(t *testing.T) {
	got := SanitizeMarkup(`<SCRIPT>alert(1)</SCRIPT><div ONCLICK="x()">hi</div>`)
	if strings.Contains(strings.ToLower(got), "script") || strings.Contains(strings.ToLower(got), "onclick") {
		t.Fatalf("mixed-case payload survived: %q", got)
	}
}
