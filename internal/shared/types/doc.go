// Package types provides the typed results returned by the notebook client.
//
// Core Types:
//   - Notebook: a notebook with its embedded source references
//   - Source: one source inside a notebook (web page, video, pasted text, ...)
//   - SourceContent: the full indexed text of a source
//   - QueryResult: an answer plus conversation bookkeeping
//
// Source kinds are numeric codes on the wire; SourceKind.Name maps them to
// stable names.
package types
