// Package segment splits raw document text into sentence units for
// embedding and retrieval.
//
// Segmentation normalizes whitespace, detects sentence boundaries with
// abbreviation and decimal-number handling, and silently drops units below
// a configurable word count. Dropped units are expected extraction noise
// (headers, page numbers, stray punctuation), not errors.
package segment
