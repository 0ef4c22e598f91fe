// Package buildinfo holds build-time metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/dmitrijs2005/gophdiary/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

const notAvailable = "N/A"

var (
	Version   string
	BuildDate string
	Commit    string
)

// Context is a snapshot of the build metadata.
type Context struct {
	Version   string
	BuildDate string
	Commit    string
}

// Current returns the injected values, with N/A for the ones not set.
func Current() Context {
	return Context{
		Version:   orNA(Version),
		BuildDate: orNA(BuildDate),
		Commit:    orNA(Commit),
	}
}

// PrintBuildData writes the build metadata to w, one value per line.
func PrintBuildData(w io.Writer) {
	c := Current()
	fmt.Fprintf(w, "Build version: %s\n", c.Version)
	fmt.Fprintf(w, "Build date: %s\n", c.BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", c.Commit)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
