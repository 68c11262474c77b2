package record

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one differing field between two instances. Path is dotted for
// fields of nested records, e.g. "endpoint.port".
type Change struct {
	Path string
	Old  any
	New  any
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.Path, c.Old, c.New)
}

// Diff lists the fields whose values differ between a and b, in
// declaration order. Both instances must be non-nil and belong to the same
// schema.
func Diff(a, b *Instance) ([]Change, error) {
	if err := sameSchema(a, b); err != nil {
		return nil, err
	}

	return diffInto(nil, "", a, b), nil
}

// sameSchema fails unless a and b are non-nil instances of one schema.
func sameSchema(a, b *Instance) error {
	if a == nil || b == nil || a.schema != b.schema {
		return fmt.Errorf("%w: %s and %s", ErrSchemaMismatch, schemaName(a), schemaName(b))
	}

	return nil
}

func schemaName(inst *Instance) string {
	if inst == nil {
		return "<nil>"
	}

	return inst.schema.name
}

func diffInto(changes []Change, prefix string, a, b *Instance) []Change {
	for i, f := range a.schema.fields {
		path := prefix + f.Name
		av, bv := a.values[i], b.values[i]

		na, okA := av.(*Instance)
		nb, okB := bv.(*Instance)

		if okA && okB && na != nil && nb != nil && na.schema == nb.schema {
			changes = diffInto(changes, path+".", na, nb)
			continue
		}

		if !valuesEqual(av, bv) {
			changes = append(changes, Change{Path: path, Old: av, New: bv})
		}
	}

	return changes
}

// DiffText renders both instances as YAML and returns a line diff of the
// renderings. Removed lines start with "-", added lines with "+" and
// unchanged lines with a space. Identical instances yield "".
func DiffText(a, b *Instance) (string, error) {
	if err := sameSchema(a, b); err != nil {
		return "", err
	}

	oldText, err := a.AsYAML()
	if err != nil {
		return "", err
	}

	newText, err := b.AsYAML()
	if err != nil {
		return "", err
	}

	if string(oldText) == string(newText) {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	rOld, rNew, lines := dmp.DiffLinesToRunes(string(oldText), string(newText))
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(rOld, rNew, false))

	var sb strings.Builder

	for _, d := range diffs {
		prefix := " "

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}

		for _, r := range d.Text {
			idx := int(r)
			if idx < 0 || idx >= len(lines) {
				continue
			}

			line := lines[idx]

			sb.WriteString(prefix)
			sb.WriteString(line)

			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), nil
}
