// Package extract reads document files and returns their raw text.
//
// PDF files are parsed with rsc.io/pdf: pages are read in order, glyph runs on
// the same baseline are joined (inserting a space where the layout leaves a
// visible gap), and lines and pages are separated by newlines. Plain text and
// Markdown files are read as UTF-8. Extraction never normalizes text; that is
// the similarity pipeline's job.
//
// Cache wraps a Loader with an LRU keyed by path, size, and modification time
// so watch mode and the API server do not re-parse unchanged PDFs.
package extract
