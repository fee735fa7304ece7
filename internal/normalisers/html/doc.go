// Package html converts newsletter HTML bodies to markdown.
// Headings, lists, links, images and emphasis survive as markdown syntax;
// scripts, styles and layout markup are dropped. Lines are never wrapped.
package html
