package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// writeDiff prints before with deletions in red and insertions in green. It
// reports whether the two texts differ.
func writeDiff(w io.Writer, before, after string) bool {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	del := color.New(color.FgRed, color.CrossedOut)
	ins := color.New(color.FgGreen, color.Bold)
	changed := false
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			io.WriteString(w, d.Text)
		case diffmatchpatch.DiffDelete:
			changed = true
			del.Fprint(w, "[-"+d.Text+"-]")
		case diffmatchpatch.DiffInsert:
			changed = true
			ins.Fprint(w, "{+"+d.Text+"+}")
		}
	}
	io.WriteString(w, "\n")
	return changed
}
