package portal

import (
	"os"
	"path/filepath"
	"strings"
)

// FailureHook captures diagnostic artifacts when an extraction fails. Capture
// is best-effort: it must never surface an error that could mask the failure
// being diagnosed.
type FailureHook interface {
	Capture(label string)
}

// Diagnostics writes a screenshot and a raw HTML dump per failure, named by
// the item code or page number that failed.
type Diagnostics struct {
	page Page
	dir  string
}

func NewDiagnostics(page Page, dir string) *Diagnostics {
	return &Diagnostics{page: page, dir: dir}
}

func (d *Diagnostics) Capture(label string) {
	if d == nil || d.page == nil {
		return
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return
	}

	base := filepath.Join(d.dir, "debug_"+sanitizeLabel(label))
	_ = d.page.Screenshot(base + ".png")
	if html, err := d.page.HTML(); err == nil {
		_ = os.WriteFile(base+".html", []byte(html), 0o644)
	}
}

func sanitizeLabel(input string) string {
	repl := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 80 {
		out = out[:80]
	}
	return out
}
