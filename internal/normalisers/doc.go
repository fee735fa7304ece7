// Package normalisers turns provider message bodies into the markdown text
// the relevance and generation stages read. Each subpackage implements
// driven.Canonicaliser for one source format.
package normalisers
