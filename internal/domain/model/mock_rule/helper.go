package model

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// syntheticHost is the host of URLs generated for rules registered without
// an explicit URL.
const syntheticHost = "mocked.example.com"

// NormalizeExtensions lower-cases extensions, strips dots and removes
// duplicates. The result is sorted so two sets compare with ==.
//
//	[".PNG", "jpg", "png"] => ["jpg", "png"]
func NormalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(e), ".", ""))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// PathExtension returns the lower-cased extension of the URL path without
// the leading dot, or "" when there is none.
func PathExtension(u *url.URL) string {
	if u == nil {
		return ""
	}
	ext := path.Ext(u.Path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// CanonicalURL renders u with a lower-cased scheme and host and a path
// re-escaped from its decoded form, so equivalent percent-encodings compare
// equal.
func CanonicalURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.RawPath = ""
	return c.String()
}

// BaseURL returns scheme://host/path, dropping query and fragment.
//
//	https://h/v1/test?param=test => https://h/v1/test
func BaseURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := url.URL{
		Scheme: strings.ToLower(u.Scheme),
		Host:   strings.ToLower(u.Host),
		Path:   u.Path,
		Opaque: u.Opaque,
	}
	return c.String()
}

// MatchURL reports whether reqURL matches ruleURL under mode.
func MatchURL(ruleURL, reqURL *url.URL, mode URLMatchMode) bool {
	if ruleURL == nil || reqURL == nil {
		return false
	}
	switch mode {
	case MatchIgnoreQuery:
		return BaseURL(ruleURL) == BaseURL(reqURL)
	case MatchPrefix:
		return strings.HasPrefix(CanonicalURL(reqURL), CanonicalURL(ruleURL))
	default:
		return CanonicalURL(ruleURL) == CanonicalURL(reqURL)
	}
}

// buildSyntheticURL derives the stable key URL of an anonymous rule from its
// content type, status and method.
func buildSyntheticURL(ct *ContentType, statusCode int, method HTTPMethod) *url.URL {
	name := "no-content"
	if ct != nil && ct.Name != "" {
		name = ct.Name
	}
	return &url.URL{
		Scheme: "https",
		Host:   syntheticHost,
		Path:   fmt.Sprintf("/%s/%d/%s", name, statusCode, method),
	}
}

// sortedMethods returns the keys of responses in a stable order with GET
// first, so the primary method of a rule never depends on map iteration.
func sortedMethods(responses map[HTTPMethod][]byte) []HTTPMethod {
	methods := make([]HTTPMethod, 0, len(responses))
	for m := range responses {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i] == MethodGet || methods[j] == MethodGet {
			return methods[i] == MethodGet
		}
		return methods[i] < methods[j]
	})
	return methods
}
