package model

import (
	"strings"
	"sync"
)

// ContentType designates the Content-Type header of a rule. Name is also
// used to build the synthetic URL of anonymous rules.
type ContentType struct {
	Name        string
	HeaderValue string
}

var (
	ContentTypeJSON     = ContentType{Name: "json", HeaderValue: "application/json; charset=utf-8"}
	ContentTypeHTML     = ContentType{Name: "html", HeaderValue: "text/html; charset=utf-8"}
	ContentTypeImagePNG = ContentType{Name: "imagePNG", HeaderValue: "image/png"}
	ContentTypePDF      = ContentType{Name: "pdf", HeaderValue: "application/pdf"}
	ContentTypeMP4      = ContentType{Name: "mp4", HeaderValue: "video/mp4"}
	ContentTypeZIP      = ContentType{Name: "zip", HeaderValue: "application/zip"}
)

var (
	contentTypeMu       sync.RWMutex
	contentTypeRegistry = make(map[string]ContentType)
)

// RegisterContentType makes a content type resolvable by name, e.g. from
// fixture files. Names are case-insensitive.
func RegisterContentType(ct ContentType) {
	contentTypeMu.Lock()
	defer contentTypeMu.Unlock()
	contentTypeRegistry[strings.ToLower(ct.Name)] = ct
}

// LookupContentType returns the content type registered under name.
func LookupContentType(name string) (ContentType, bool) {
	contentTypeMu.RLock()
	defer contentTypeMu.RUnlock()
	ct, ok := contentTypeRegistry[strings.ToLower(name)]
	return ct, ok
}

func init() {
	for _, ct := range []ContentType{
		ContentTypeJSON,
		ContentTypeHTML,
		ContentTypeImagePNG,
		ContentTypePDF,
		ContentTypeMP4,
		ContentTypeZIP,
	} {
		RegisterContentType(ct)
	}
}
