// Package meta holds the metadata a spider collects while parsing a story and
// projects it into <head> markup.
//
// # Ordering
//
// Metadata remembers insertion order. Setting a key that already exists
// replaces its value but keeps its original position, so keys are unique.
//
// # Projection
//
// Project always emits <meta charset="UTF-8"> first. The "title" key becomes a
// <title> element; every other key becomes <meta name="key" content="value">.
package meta
