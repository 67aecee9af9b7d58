// Package report renders run summaries and the run history.
//
// Three formats are available:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for other tools
//   - MarkdownWriter: Markdown for sharing, with a mermaid chart of
//     response outcomes
//
// All of them implement Writer and can be combined with MultiWriter.
package report
