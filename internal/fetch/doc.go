// Package fetch retrieves provider web pages and documents.
//
// FetchPage downloads a page with browser-like headers, parses it with goquery and returns
// the page text (HTML converted to Markdown) together with its outbound links resolved to
// absolute http(s) URLs. When a page links to a PDF whose URL itself names a cost document
// (a "golden" link), link collection stops, the PDF is downloaded and it is reported as the
// page's only outbound link.
//
// Downloader saves linked files (pricing PDFs, compliance reports) into a directory.
package fetch
