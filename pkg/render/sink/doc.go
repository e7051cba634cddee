// Package sink provides the document backends for label sheets.
//
// [PDF] draws a page with seehuhn.de/go/pdf. Every label is set in one of
// the 14 standard PDF fonts, so nothing needs to be embedded or loaded from
// disk. [JSON] writes the page description as indented JSON.
//
// Use [ForFormat] to pick a backend by format name.
package sink
