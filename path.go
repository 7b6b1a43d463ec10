package relaxavro

import (
	"strconv"
	"strings"
)

// path is an immutable chain of field names and array indices from the
// document root. Each decode call builds its own chain.
type path struct {
	parent *path
	part   string
}

func (p *path) field(name string) *path {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &path{parent: p, part: esc}
}

func (p *path) index(i int) *path {
	return &path{parent: p, part: strconv.Itoa(i)}
}

func (p *path) pointer() string {
	if p == nil {
		return "/"
	}
	var parts []string
	for c := p; c != nil; c = c.parent {
		parts = append(parts, c.part)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}
