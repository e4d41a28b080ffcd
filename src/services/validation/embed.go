package validation

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var DefaultEmbedHosts = []string{"google.com", "maps.google.com", "www.google.com", "openstreetmap.org"}

// EmbedPolicy decide o que é aceito em mapa_embed. O valor pode ser o iframe
// inteiro copiado do provedor ou apenas a URL; em ambos os casos só a URL é guardada.
type EmbedPolicy struct {
	AllowedHosts []string
}

func NewEmbedPolicy(hosts []string) EmbedPolicy {
	if len(hosts) == 0 {
		hosts = DefaultEmbedHosts
	}
	return EmbedPolicy{AllowedHosts: hosts}
}

func (p EmbedPolicy) Extract(raw string) (string, bool) {
	src := strings.TrimSpace(raw)

	if strings.Contains(src, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
		if err != nil {
			return "", false
		}
		value, exists := doc.Find("iframe").First().Attr("src")
		if !exists {
			return "", false
		}
		src = strings.TrimSpace(value)
	}

	parsed, err := url.Parse(src)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return "", false
	}

	if !p.allowed(parsed.Hostname()) {
		return "", false
	}
	return src, true
}

func (p EmbedPolicy) allowed(host string) bool {
	host = strings.ToLower(host)
	for _, candidate := range p.AllowedHosts {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		if candidate == "" {
			continue
		}
		if host == candidate || strings.HasSuffix(host, "."+candidate) {
			return true
		}
	}
	return false
}
