package monitor

import (
	"io"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
)

const barTemplate = `Scanning {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// Progress counts completed probe units against a fixed total. It is safe
// for concurrent use; the counter only grows and never passes the total.
type Progress struct {
	total     int64
	completed atomic.Int64
	bar       *pb.ProgressBar
}

// NewProgress starts tracking total units. When w is non-nil a live bar is
// drawn to it until Finish is called.
func NewProgress(total int, w io.Writer) *Progress {
	if total < 0 {
		total = 0
	}
	p := &Progress{total: int64(total)}

	if w != nil {
		p.bar = pb.New(total)
		p.bar.SetTemplate(pb.ProgressBarTemplate(barTemplate))
		p.bar.SetWriter(w)
		p.bar.Start()
	}

	return p
}

// Advance marks one more unit as completed. It reports false if the counter
// was already at the total, or if p is nil.
func (p *Progress) Advance() bool {
	if p == nil {
		return false
	}
	for {
		cur := p.completed.Load()
		if cur >= p.total {
			return false
		}
		if p.completed.CompareAndSwap(cur, cur+1) {
			if p.bar != nil {
				p.bar.Increment()
			}
			return true
		}
	}
}

// Completed returns the number of finished units
func (p *Progress) Completed() int {
	return int(p.completed.Load())
}

// Total returns the number of units the scan started with
func (p *Progress) Total() int {
	return int(p.total)
}

// Finish stops the live bar, if any
func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
