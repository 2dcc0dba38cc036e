package magnet

import (
	"fmt"
	"net/url"
	"strings"
)

const Prefix = "magnet:?"

// IsMagnet reports whether ref already looks like a magnet URI.
func IsMagnet(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), Prefix)
}

// Link is a parsed magnet URI.
type Link struct {
	InfoHash    string
	DisplayName string
	Trackers    []string
}

// Parse decodes a magnet URI into its components.
func Parse(raw string) (Link, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Link{}, fmt.Errorf("parse magnet link: %w", err)
	}
	if u.Scheme != "magnet" {
		return Link{}, fmt.Errorf("invalid scheme %q for magnet link", u.Scheme)
	}

	var link Link
	params := u.Query()
	for _, xt := range params["xt"] {
		if strings.HasPrefix(xt, "urn:btih:") {
			link.InfoHash = NormalizeInfoHash(xt)
			break
		}
	}
	if link.InfoHash == "" {
		return Link{}, fmt.Errorf("magnet link carries no btih hash")
	}
	if dn := params.Get("dn"); dn != "" {
		link.DisplayName = dn
	}
	link.Trackers = params["tr"]
	return link, nil
}

// NormalizeInfoHash lowercases a raw hash and strips the urn prefix.
func NormalizeInfoHash(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimPrefix(value, "urn:btih:")
}

// Build assembles a magnet URI from an infohash, optional display name
// and optional trackers.
func Build(infoHash, name string, trackers []string) string {
	hash := NormalizeInfoHash(infoHash)
	if hash == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(hash)
	if name = strings.TrimSpace(name); name != "" {
		b.WriteString("&dn=")
		b.WriteString(url.QueryEscape(name))
	}
	for _, tracker := range trackers {
		if tracker = strings.TrimSpace(tracker); tracker == "" {
			continue
		}
		b.WriteString("&tr=")
		b.WriteString(url.QueryEscape(tracker))
	}
	return b.String()
}
