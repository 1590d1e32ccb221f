// Package report renders the executive market report as a PDF: title block,
// KPI box, volume ranking, leading importers and a monthly trend chart.
//
// Text is written with the PDF core fonts, so it is encoded to Windows-1252
// and runes outside that code page print as '?'.
package report
