package detect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsePageMeta reads the og:site_name and <title> of an HTML document.
func ParsePageMeta(r io.Reader) (PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return PageMeta{}, fmt.Errorf("parse page html: %w", err)
	}

	var meta PageMeta
	if v, ok := doc.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		meta.SiteName = v
	}
	// browsers collapse whitespace in document.title
	meta.Title = strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	return meta, nil
}

// FetchPageMeta downloads pageURL and parses its metadata.
func FetchPageMeta(ctx context.Context, hc *http.Client, pageURL string) (PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return PageMeta{}, err
	}
	req.Header.Set("User-Agent", "JobGo/1.0 (+local)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := hc.Do(req)
	if err != nil {
		return PageMeta{}, fmt.Errorf("fetch page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return PageMeta{}, fmt.Errorf("page status %d", res.StatusCode)
	}

	return ParsePageMeta(io.LimitReader(res.Body, 4<<20))
}

// Resolve detects pageURL and, on a match, fills Name from meta.
func Resolve(pageURL string, meta PageMeta) *Detection {
	d := Detect(pageURL)
	if d == nil {
		return nil
	}
	d.Name = DeriveName(d.Slug, meta)
	return d
}
