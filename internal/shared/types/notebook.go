package types

import "time"

// Notebook is one notebook as listed or fetched
type Notebook struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SourceCount int       `json:"source_count"`
	Sources     []Source  `json:"sources,omitempty"`
	IsOwned     bool      `json:"is_owned"`
	IsShared    bool      `json:"is_shared"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	ModifiedAt  time.Time `json:"modified_at,omitzero"`
}

// SourceIDs returns the IDs of every embedded source, in order
func (n *Notebook) SourceIDs() []string {
	ids := make([]string, 0, len(n.Sources))
	for _, s := range n.Sources {
		if s.ID != "" {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// SourceKind is the service's numeric source type code
type SourceKind int

const (
	KindUnknown            SourceKind = 0
	KindGoogleDocs         SourceKind = 1
	KindGoogleSlidesSheets SourceKind = 2
	KindPDF                SourceKind = 3
	KindPastedText         SourceKind = 4
	KindWebPage            SourceKind = 5
	KindGeneratedText      SourceKind = 8
	KindYouTube            SourceKind = 9
	KindUploadedFile       SourceKind = 11
	KindImage              SourceKind = 13
	KindWordDoc            SourceKind = 14
)

var sourceKindNames = map[SourceKind]string{
	KindGoogleDocs:         "google_docs",
	KindGoogleSlidesSheets: "google_slides_sheets",
	KindPDF:                "pdf",
	KindPastedText:         "pasted_text",
	KindWebPage:            "web_page",
	KindGeneratedText:      "generated_text",
	KindYouTube:            "youtube",
	KindUploadedFile:       "uploaded_file",
	KindImage:              "image",
	KindWordDoc:            "word_doc",
}

// Name returns the stable name for the kind, or "unknown"
func (k SourceKind) Name() string {
	if name, ok := sourceKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// String implements fmt.Stringer
func (k SourceKind) String() string {
	return k.Name()
}

// Source is a source reference inside a notebook
type Source struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Kind  SourceKind `json:"kind"`
	URL   string     `json:"url,omitempty"`
}

// SourceContent is the full indexed text of a source
type SourceContent struct {
	Source
	Content string `json:"content"`
}

// CharCount returns the content length in characters
func (c *SourceContent) CharCount() int {
	return len([]rune(c.Content))
}
