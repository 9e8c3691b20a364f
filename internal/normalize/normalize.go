package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var spaces = regexp.MustCompile(`\s+`)

// Options mirrors the normalize section of the config.
type Options struct {
	TrimNBSP       bool
	CollapseSpaces bool
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Text cleans a field value read from the DOM. The result is always trimmed;
// an absent value stays "".
func (n *Normalizer) Text(s string) string {
	if n.opts.TrimNBSP {
		s = strings.ReplaceAll(s, "\u00A0", " ")
	}
	if n.opts.CollapseSpaces {
		s = spaces.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s)
}

// trackingParams are dropped from non-LinkedIn job URLs.
var trackingParams = map[string]bool{
	"gclid":      true,
	"fbclid":     true,
	"msclkid":    true,
	"mc_cid":     true,
	"mc_eid":     true,
	"mkt_tok":    true,
	"trk":        true,
	"refid":      true,
	"trackingid": true,
}

// JobURL canonicalizes a detail-page URL. Fragments are removed. On linkedin.com only
// currentJobId survives in the query, since every other parameter there is
// per-session tracking that makes one posting look like many.
func JobURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		if idx := strings.Index(raw, "#"); idx > -1 {
			raw = raw[:idx]
		}
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery == "" {
		return u.String()
	}

	q := u.Query()
	if strings.Contains(strings.ToLower(u.Host), "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		u.RawQuery = keep.Encode()
		return u.String()
	}

	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || trackingParams[lk] {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
