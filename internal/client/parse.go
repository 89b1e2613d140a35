package client

import (
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/protocol"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
)

const untitled = "Untitled"

// Positional layout of a notebook entry.
const (
	nbTitle   = 0
	nbSources = 1
	nbID      = 2
	nbMeta    = 5

	metaOwned    = 0
	metaShared   = 1
	metaModified = 5
	metaCreated  = 8
)

// Positional layout of a source entry.
const (
	srcID       = 0
	srcTitle    = 1
	srcMeta     = 2
	srcMetaKind = 4
	srcMetaURL  = 7
)

// parseNotebookList reads the list-notebooks payload. Entries without an
// id are skipped.
func parseNotebookList(result any) []types.Notebook {
	list := protocol.List(protocol.Index(result, 0))
	if list == nil {
		list = protocol.List(result)
	}

	notebooks := make([]types.Notebook, 0, len(list))
	for _, entry := range list {
		if nb, ok := parseNotebook(entry); ok {
			notebooks = append(notebooks, nb)
		}
	}
	return notebooks
}

// parseNotebook reads one positional notebook entry.
func parseNotebook(entry any) (types.Notebook, bool) {
	fields := protocol.List(entry)
	if len(fields) < 3 {
		return types.Notebook{}, false
	}
	id := protocol.String(fields[nbID])
	if id == "" {
		return types.Notebook{}, false
	}

	nb := types.Notebook{
		ID:      id,
		Title:   protocol.String(fields[nbTitle]),
		IsOwned: true,
	}
	if nb.Title == "" {
		nb.Title = untitled
	}

	for _, src := range protocol.List(fields[nbSources]) {
		if s, ok := parseSource(src); ok {
			nb.Sources = append(nb.Sources, s)
		}
	}
	nb.SourceCount = len(nb.Sources)

	if meta := protocol.List(protocol.Index(fields, nbMeta)); len(meta) > 0 {
		owned, _ := protocol.Int(meta[metaOwned])
		nb.IsOwned = owned == 1
		nb.IsShared = protocol.Truthy(protocol.Index(meta, metaShared))
		nb.ModifiedAt = protocol.Timestamp(protocol.Index(meta, metaModified))
		nb.CreatedAt = protocol.Timestamp(protocol.Index(meta, metaCreated))
	}
	return nb, true
}

// parseSource reads [[id], title, metadata, ...].
func parseSource(entry any) (types.Source, bool) {
	fields := protocol.List(entry)
	if len(fields) < 2 {
		return types.Source{}, false
	}

	s := types.Source{
		ID:    sourceID(fields[srcID]),
		Title: protocol.String(fields[srcTitle]),
	}
	if s.ID == "" {
		return types.Source{}, false
	}
	if s.Title == "" {
		s.Title = untitled
	}
	applySourceMeta(&s, protocol.Index(fields, srcMeta))
	return s, true
}

func applySourceMeta(s *types.Source, meta any) {
	if kind, ok := protocol.Int(protocol.Index(meta, srcMetaKind)); ok {
		s.Kind = types.SourceKind(kind)
	}
	s.URL = protocol.String(protocol.Index(protocol.Index(meta, srcMetaURL), 0))
}

// sourceID accepts both [id] and a bare id.
func sourceID(v any) string {
	if id := protocol.String(protocol.Index(v, 0)); id != "" {
		return id
	}
	return protocol.String(v)
}

// parseSourceContent reads the get-source payload: result[0] is the source
// header and result[3][0] holds the content blocks.
func parseSourceContent(sourceID string, result any) types.SourceContent {
	header := protocol.Index(result, 0)

	sc := types.SourceContent{
		Source: types.Source{
			ID:    sourceID,
			Title: protocol.String(protocol.Index(header, srcTitle)),
		},
	}
	if id := sourceIDOf(header); id != "" {
		sc.ID = id
	}
	applySourceMeta(&sc.Source, protocol.Index(header, srcMeta))

	var parts []string
	for _, block := range protocol.List(protocol.Index(protocol.Index(result, 3), 0)) {
		if protocol.List(block) != nil {
			parts = append(parts, protocol.Strings(block)...)
		}
	}
	sc.Content = strings.Join(parts, "\n\n")
	return sc
}

func sourceIDOf(header any) string {
	return protocol.String(protocol.Index(protocol.Index(header, srcID), 0))
}

// parseAddedSource reads the add-source payload: result[0][0] is the new
// source entry.
func parseAddedSource(result any, defaultTitle string) (types.Source, bool) {
	entry := protocol.Index(protocol.Index(result, 0), 0)
	id := sourceIDOf(entry)
	if id == "" {
		return types.Source{}, false
	}
	title := protocol.String(protocol.Index(entry, srcTitle))
	if title == "" {
		title = defaultTitle
	}
	s := types.Source{ID: id, Title: title}
	applySourceMeta(&s, protocol.Index(entry, srcMeta))
	return s, true
}
