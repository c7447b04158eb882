// Package views turns API records into what the pages show: banners, tab
// buckets, offered actions and formatted lines. Nothing here does I/O.
package views
