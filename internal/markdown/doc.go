// Package markdown is a block/inline scanner for lectic documents. It finds
// the YAML header, container directives, literal HTML blocks, code blocks,
// text directives and links, reporting absolute byte ranges into the whole
// document. It does no validation and understands only as much of markdown
// as is needed to keep directives in code from being mistaken for live ones.
package markdown
