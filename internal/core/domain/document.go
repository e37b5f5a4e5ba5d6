package domain

import "path/filepath"

// DocumentInfo describes the open document.
type DocumentInfo struct {
	// Source is the path the document was loaded from.
	Source string `json:"source"`

	// Fingerprint identifies the content. Annotations are keyed by it.
	Fingerprint string `json:"fingerprint"`

	PageCount int        `json:"page_count"`
	Pages     []PageInfo `json:"pages"`
}

// PageInfo is one page's unit size.
type PageInfo struct {
	Page   int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Title returns the source's base name.
func (d DocumentInfo) Title() string {
	if d.Source == "" {
		return ""
	}
	return filepath.Base(d.Source)
}
