// Package detect recognizes career pages on the applicant-tracking platforms
// JobGo can scan and pulls out the company slug.
package detect

import (
	"net/url"
	"strings"
)

// Platform canonical names, as the backend knows them.
const (
	Greenhouse = "greenhouse"
	Lever      = "lever"
	Ashby      = "ashby"
)

type platformRule struct {
	hostPart string
	name     string
}

// Checked in order; host names arrive lower-cased.
var platforms = []platformRule{
	{"greenhouse.io", Greenhouse},
	{"lever.co", Lever},
	{"ashbyhq.com", Ashby},
}

// Detection is what a single page load yields. Name is filled by DeriveName.
type Detection struct {
	Platform string `json:"platform"`
	Slug     string `json:"slug"`
	Name     string `json:"name,omitempty"`
}

// Detect classifies rawURL. It returns nil when the host is not a known
// platform, the path has no segment to use as a slug, or the URL does not
// parse. nil means "nothing to do", never an error.
func Detect(rawURL string) *Detection {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil
	}
	return DetectLocation(u.Hostname(), u.EscapedPath())
}

// DetectLocation is Detect for an already split location.
func DetectLocation(host, path string) *Detection {
	platform := platformFor(host)
	if platform == "" {
		return nil
	}
	slug := firstSegment(path)
	if slug == "" {
		return nil
	}
	return &Detection{Platform: platform, Slug: slug}
}

func platformFor(host string) string {
	for _, p := range platforms {
		if strings.Contains(host, p.hostPart) {
			return p.name
		}
	}
	return ""
}

func firstSegment(path string) string {
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			return part
		}
	}
	return ""
}

// Platforms lists the canonical platform names in detection order.
func Platforms() []string {
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, p.name)
	}
	return out
}
