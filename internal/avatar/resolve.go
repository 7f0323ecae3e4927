package avatar

import (
	"net/url"
	"path"
	"strings"

	"rosterlink/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultExtension is used when neither the url nor the content type name one.
const DefaultExtension = ".png"

// AvatarKeywords are searched for in image addresses when the page has no
// head-pic anchor.
var AvatarKeywords = []string{"avatar", "head", "profile"}

// FindAvatarURL locates the avatar reference of a profile page: the image
// nested in the "head-pic" anchor, or else the first image whose address
// mentions one of AvatarKeywords.
func FindAvatarURL(doc *goquery.Document) (string, bool) {
	headPic := doc.Find(`a[class*="head-pic"]`).First()
	if headPic.Length() > 0 {
		src := strings.TrimSpace(headPic.Find("img").First().AttrOr("src", ""))
		if src != "" {
			return src, true
		}
	}

	var found string
	doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if _, ok := textutil.ContainsAny(src, AvatarKeywords); ok {
			found = src
			return false
		}
		return true
	})
	return found, found != ""
}

// NormalizeURL turns an image reference into an absolute url. Protocol
// relative references are promoted to https, everything else is resolved
// against page, the url the profile was actually served from.
func NormalizeURL(ref string, page *url.URL) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref, nil
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() || page == nil {
		return ref, nil
	}
	return page.ResolveReference(parsed).String(), nil
}

// ExtensionFromURL returns the extension of the last path segment, the query
// string is never considered.
func ExtensionFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := strings.TrimLeft(path.Base(parsed.Path), ".")
	return path.Ext(base)
}

// ExtensionFromContentType maps an image content type to its usual extension,
// non-image and unknown types yield "".
func ExtensionFromContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if !strings.HasPrefix(mediaType, "image/") {
		return ""
	}
	m := mimetype.Lookup(mediaType)
	if m == nil {
		return ""
	}
	return m.Extension()
}

// IsImage reports whether a content type describes an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "image")
}
