package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"direct pdf", "https://example.com/docs/policy.pdf", true},
		{"direct pdf uppercase suffix", "https://example.com/POLICY.PDF", true},
		{"direct pdf with query", "https://cdn.example.org/a/b.pdf?sig=abc", true},
		{"direct pdf any host", "http://10.0.0.1:9000/bucket/file.pdf", true},
		{"drive share", "https://drive.google.com/file/d/ABC123/view?usp=sharing", true},
		{"drive without file segment", "https://drive.google.com/drive/folders/xyz", false},
		{"dropbox share", "https://www.dropbox.com/s/xyz/file?dl=0", true},
		{"dropbox host case insensitive", "https://WWW.Dropbox.com/s/xyz/file", true},
		{"onedrive short link", "https://1drv.ms/b/s!AbCdEf", true},
		{"onedrive live", "https://onedrive.live.com/redir?resid=123", true},
		{"html page", "https://example.com/index.html", false},
		{"pdf only in query", "https://example.com/view?file=report.pdf", false},
		{"not a url", "just some words.pdf", false},
		{"relative path", "/files/report.pdf", false},
		{"empty", "", false},
		{"scheme without host", "https://", false},
		{"unparsable", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptable(tt.url))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "drive share to direct download",
			url:  "https://drive.google.com/file/d/ABC123/view?usp=sharing",
			want: "https://drive.google.com/uc?export=download&id=ABC123",
		},
		{
			name: "drive id with dash and underscore",
			url:  "https://drive.google.com/file/d/1a-B_c9/view",
			want: "https://drive.google.com/uc?export=download&id=1a-B_c9",
		},
		{
			name: "dropbox share to content host",
			url:  "https://www.dropbox.com/s/xyz/file.pdf?dl=0",
			want: "https://dl.dropboxusercontent.com/s/xyz/file.pdf",
		},
		{
			name: "dropbox keeps other query params in order",
			url:  "https://www.dropbox.com/scl/fi/abc/report.pdf?rlkey=k1&dl=0&st=zz",
			want: "https://dl.dropboxusercontent.com/scl/fi/abc/report.pdf?rlkey=k1&st=zz",
		},
		{
			name: "dropbox without marker",
			url:  "https://www.dropbox.com/s/xyz/file.pdf",
			want: "https://dl.dropboxusercontent.com/s/xyz/file.pdf",
		},
		{
			name: "onedrive unchanged",
			url:  "https://1drv.ms/b/s!AbCdEf",
			want: "https://1drv.ms/b/s!AbCdEf",
		},
		{
			name: "direct pdf unchanged",
			url:  "https://example.com/docs/policy.pdf",
			want: "https://example.com/docs/policy.pdf",
		},
		{
			name: "non url unchanged",
			url:  "not a url at all",
			want: "not a url at all",
		},
		{
			name: "unparsable unchanged",
			url:  "http://[::1",
			want: "http://[::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.url))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"https://drive.google.com/file/d/ABC123/view?usp=sharing",
		"https://drive.google.com/file/d/",
		"https://www.dropbox.com/s/xyz/file.pdf?dl=0",
		"https://www.dropbox.com/s/xyz/file.pdf?dl=0&dl=0",
		"https://1drv.ms/b/s!AbCdEf",
		"https://example.com/a.pdf",
		"",
		"garbage",
		"http://[::1",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_DriveContainsOnlyExtractedID(t *testing.T) {
	got := Normalize("https://drive.google.com/file/d/ABC123/view?usp=sharing")
	assert.Contains(t, got, "id=ABC123")
	assert.NotContains(t, got, "usp=sharing")
	assert.NotContains(t, got, "/view")
}

func TestNormalizer_CustomConfiguration(t *testing.T) {
	n := Normalizer{
		DriveDownloadURL:   "https://drive.usercontent.google.com/download?id={id}&export=download",
		DropboxContentHost: "dl.dropbox.com",
	}
	assert.Equal(t,
		"https://drive.usercontent.google.com/download?id=XYZ&export=download",
		n.Normalize("https://drive.google.com/file/d/XYZ/view"))
	assert.Equal(t,
		"https://dl.dropbox.com/s/xyz/file.pdf",
		n.Normalize("https://www.dropbox.com/s/xyz/file.pdf?dl=0"))
}

func TestNormalizer_ZeroValueUsesDefaults(t *testing.T) {
	var n Normalizer
	assert.Equal(t, Default.Normalize("https://www.dropbox.com/s/a.pdf?dl=0"), n.Normalize("https://www.dropbox.com/s/a.pdf?dl=0"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		url  string
		kind Kind
		norm string
	}{
		{"https://example.com/x.pdf", KindDirectPDF, "https://example.com/x.pdf"},
		{"https://drive.google.com/file/d/ID1/view", KindGoogleDrive, "https://drive.google.com/uc?export=download&id=ID1"},
		{"https://www.dropbox.com/s/q/x.pdf?dl=0", KindDropbox, "https://dl.dropboxusercontent.com/s/q/x.pdf"},
		{"https://onedrive.live.com/redir?resid=1", KindOneDrive, "https://onedrive.live.com/redir?resid=1"},
		{"https://example.com/x.html", KindUnrecognized, "https://example.com/x.html"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ref := Parse(tt.url)
			assert.Equal(t, tt.url, ref.Raw)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.norm, ref.Normalized)
		})
	}
}
