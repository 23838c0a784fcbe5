package reference

import (
	"net/url"
	"regexp"
	"strings"
)

type Kind string

const (
	KindDirectPDF    Kind = "direct_pdf"
	KindGoogleDrive  Kind = "google_drive_share"
	KindDropbox      Kind = "dropbox_share"
	KindOneDrive     Kind = "onedrive_share"
	KindUnrecognized Kind = "unrecognized"
)

const (
	DefaultDriveDownloadURL   = "https://drive.google.com/uc?export=download&id={id}"
	DefaultDropboxContentHost = "dl.dropboxusercontent.com"

	driveHost   = "drive.google.com"
	dropboxHost = "www.dropbox.com"
)

var driveFileID = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)

// Reference is a user-supplied document locator after classification.
// Raw is kept exactly as entered for diagnostics.
type Reference struct {
	Raw        string `json:"raw"`
	Kind       Kind   `json:"kind"`
	Normalized string `json:"normalized"`
}

// Normalizer rewrites sharing links into direct-download links.
// DriveDownloadURL must contain the {id} placeholder.
type Normalizer struct {
	DriveDownloadURL   string
	DropboxContentHost string
}

var Default = Normalizer{
	DriveDownloadURL:   DefaultDriveDownloadURL,
	DropboxContentHost: DefaultDropboxContentHost,
}

func IsAcceptable(raw string) bool {
	return Default.IsAcceptable(raw)
}

func Normalize(raw string) string {
	return Default.Normalize(raw)
}

func Parse(raw string) Reference {
	return Default.Parse(raw)
}

// IsAcceptable is a syntactic allow-list. It never fetches the URL.
func (n Normalizer) IsAcceptable(raw string) bool {
	return classify(raw) != KindUnrecognized
}

// Normalize is total and idempotent: anything it cannot rewrite comes back unchanged.
func (n Normalizer) Normalize(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return raw
	}
	host := hostOf(u)
	if host == driveHost && strings.Contains(u.Path, "/file/d/") {
		if m := driveFileID.FindStringSubmatch(u.Path); m != nil {
			return strings.ReplaceAll(n.driveTemplate(), "{id}", m[1])
		}
	}
	if host == dropboxHost {
		out := *u
		out.Host = n.dropboxHost()
		out.RawQuery = stripDownloadMarker(u.RawQuery)
		out.ForceQuery = false
		return out.String()
	}
	return raw
}

func (n Normalizer) Parse(raw string) Reference {
	ref := Reference{Raw: raw, Kind: classify(raw)}
	if ref.Kind == KindUnrecognized {
		ref.Normalized = raw
		return ref
	}
	ref.Normalized = n.Normalize(raw)
	return ref
}

func (n Normalizer) driveTemplate() string {
	if strings.TrimSpace(n.DriveDownloadURL) == "" {
		return DefaultDriveDownloadURL
	}
	return n.DriveDownloadURL
}

func (n Normalizer) dropboxHost() string {
	if strings.TrimSpace(n.DropboxContentHost) == "" {
		return DefaultDropboxContentHost
	}
	return n.DropboxContentHost
}

// classify checks share providers before the .pdf suffix so that a Dropbox
// link to foo.pdf is still rewritten.
func classify(raw string) Kind {
	u, ok := parseAbsolute(raw)
	if !ok {
		return KindUnrecognized
	}
	host := hostOf(u)
	switch {
	case host == driveHost && strings.Contains(u.Path, "/file/d/"):
		return KindGoogleDrive
	case host == dropboxHost:
		return KindDropbox
	case strings.Contains(host, "1drv.ms"), strings.Contains(host, "onedrive.live.com"):
		return KindOneDrive
	case strings.HasSuffix(strings.ToLower(u.Path), ".pdf"):
		return KindDirectPDF
	default:
		return KindUnrecognized
	}
}

func parseAbsolute(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func hostOf(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// stripDownloadMarker drops every dl=0 pair and keeps the rest in order.
func stripDownloadMarker(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "dl=0" || p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "&")
}
