// Package zone implements the two-level spatial index of a catalog:
// declination zone → right-ascension bucket → (byte offset, record count).
//
// Grid maps sky coordinates to cell addresses. A value exactly on a cell
// boundary belongs to the lower cell; the ceiling is taken on the quantized
// native angle so that boundaries are exact in milliarcseconds.
//
// Index serves the per-zone bucket tables. Tables are immutable once parsed
// and are loaded at most once per zone under concurrent access.
package zone
