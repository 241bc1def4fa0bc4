package upload

import (
	"io"
	"sync"
)

// reporter forwards percent updates, suppressing repeats and regressions
// (a retry re-reads the body from zero).
type reporter struct {
	mu   sync.Mutex
	fn   func(int)
	last int
}

func newReporter(fn func(int)) *reporter {
	return &reporter{fn: fn, last: -1}
}

func (r *reporter) update(pct int) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if pct <= r.last {
		return
	}
	r.last = pct
	r.fn(pct)
}

func (r *reporter) done() { r.update(100) }

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report *reporter
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		// 100 is only reported once the server accepted the upload.
		if pct >= 100 {
			pct = 99
		}
		p.report.update(pct)
	}
	return n, err
}
