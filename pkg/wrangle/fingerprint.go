// pkg/wrangle/fingerprint.go
package wrangle

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/David-Botos/property-wrangle/pkg/model"
)

// Fingerprint hashes the header and every row of t in order, so two runs
// with the same input and seed produce the same value per partition
func Fingerprint(t *model.Table) string {
	h := xxh3.New()
	line := make([]byte, 0, 256)

	writeLine := func() {
		line = append(line, '\n')
		h.Write(line)
		line = line[:0]
	}

	for j, name := range t.ColumnNames() {
		if j > 0 {
			line = append(line, 0x1f)
		}
		line = append(line, name...)
	}
	writeLine()

	cols := t.Columns()
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range cols {
			if j > 0 {
				line = append(line, 0x1f)
			}
			if !c.IsNull(i) {
				line = append(line, c.Format(i)...)
			} else {
				// distinguishes null from an empty string
				line = append(line, 0x00)
			}
		}
		writeLine()
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Fingerprints returns the fingerprint of every partition of the result
func (r *Result) Fingerprints() map[string]string {
	out := make(map[string]string, 3)
	for _, part := range r.Partitions().All() {
		out[part.Name] = Fingerprint(part.Table)
	}
	return out
}
