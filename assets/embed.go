// Package assets embeds the default word lists.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// Answers opens the embedded target list, one word per line.
func Answers() (fs.File, error) { return FS.Open("answers.txt") }

// Allowed opens the embedded extra guess list, one word per line.
func Allowed() (fs.File, error) { return FS.Open("allowed.txt") }
