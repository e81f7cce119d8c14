package monitor

import (
	"bytes"
	"sync"
	"testing"
)

func TestProgressConcurrentAdvance(t *testing.T) {
	const total = 1000
	p := NewProgress(total, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < total/50; j++ {
				p.Advance()
			}
		}()
	}
	wg.Wait()

	if got := p.Completed(); got != total {
		t.Errorf("Completed() = %d, want %d", got, total)
	}
	if got := p.Total(); got != total {
		t.Errorf("Total() = %d, want %d", got, total)
	}
}

func TestProgressNeverPassesTotal(t *testing.T) {
	p := NewProgress(2, nil)

	if !p.Advance() || !p.Advance() {
		t.Fatal("first two advances should succeed")
	}
	if p.Advance() {
		t.Error("advance past total should be refused")
	}
	if got := p.Completed(); got != 2 {
		t.Errorf("Completed() = %d, want 2", got)
	}
}

func TestProgressMonotonic(t *testing.T) {
	const total = 500
	p := NewProgress(total, nil)

	done := make(chan struct{})
	violations := make(chan int, 1)
	go func() {
		last := 0
		for {
			select {
			case <-done:
				return
			default:
			}
			cur := p.Completed()
			if cur < last || cur > total {
				select {
				case violations <- cur:
				default:
				}
			}
			last = cur
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Advance()
		}()
	}
	wg.Wait()
	close(done)

	select {
	case v := <-violations:
		t.Errorf("observed out-of-order count %d", v)
	default:
	}
	if p.Completed() != p.Total() {
		t.Errorf("Completed() = %d, want %d", p.Completed(), p.Total())
	}
}

func TestProgressZeroTotal(t *testing.T) {
	p := NewProgress(0, nil)
	if p.Advance() {
		t.Error("advance on empty scan should be refused")
	}
	if p.Completed() != 0 || p.Total() != 0 {
		t.Errorf("progress = %d/%d, want 0/0", p.Completed(), p.Total())
	}
}

func TestNilProgressAdvance(t *testing.T) {
	var p *Progress
	if p.Advance() {
		t.Error("advance on a nil progress should be refused")
	}
}

func TestProgressBarOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, &buf)
	for i := 0; i < 4; i++ {
		p.Advance()
	}
	p.Finish()

	if !bytes.Contains(buf.Bytes(), []byte("Scanning")) {
		t.Errorf("bar output missing label: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("4 / 4")) {
		t.Errorf("bar output missing final counter: %q", buf.String())
	}
}
