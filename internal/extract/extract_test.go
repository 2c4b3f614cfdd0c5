package extract

import (
	"testing"
)

func TestTitle(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "simple title",
			raw:  `<html><head><title>My Page</title></head></html>`,
			want: "My Page",
		},
		{
			name: "title with attributes and whitespace",
			raw:  "<title data-x=\"1\">\n  Padded Title\n</title>",
			want: "Padded Title",
		},
		{
			name: "entities decoded",
			raw:  `<title>Fish &amp; Chips</title>`,
			want: "Fish & Chips",
		},
		{
			name: "no title",
			raw:  `<html><body>nothing</body></html>`,
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Title(tc.raw); got != tc.want {
				t.Errorf("Title(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "paragraphs become lines",
			raw:  `<body><p>First paragraph</p><p>Second paragraph</p></body>`,
			want: "First paragraph\nSecond paragraph",
		},
		{
			name: "scripts and styles dropped",
			raw:  `<style>p{color:red}</style><script>alert(1)</script><p>Visible</p>`,
			want: "Visible",
		},
		{
			name: "head dropped",
			raw:  `<head><title>Hidden</title><meta charset="utf-8"></head><body>Shown</body>`,
			want: "Shown",
		},
		{
			name: "comments dropped",
			raw:  `<p>Before</p><!-- secret --><p>After</p>`,
			want: "Before\nAfter",
		},
		{
			name: "entities decoded",
			raw:  `<p>a &lt; b &amp;&amp; b &gt; c</p>`,
			want: "a < b && b > c",
		},
		{
			name: "whitespace collapsed",
			raw:  "<p>too   many\t\tspaces</p>",
			want: "too many spaces",
		},
		{
			name: "inline tags stripped without breaks",
			raw:  `<p>Some <b>bold</b> and <a href="/x">linked</a> text</p>`,
			want: "Some bold and linked text",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.raw); got != tc.want {
				t.Errorf("Text(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
