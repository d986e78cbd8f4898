// Package printing contains the document layout rules used to export an
// invoice: page sizes, the paginator that slices one tall rendered bitmap
// into fixed-height pages, and the export file naming convention.
package printing
