package main

import (
	"fmt"
	"sync"

	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"

	"github.com/libswift/tswift/transfer"
)

// watchProgress attaches a terminal progress bar to surface, driven by
// the swarm's AddProgressCallback (§6), and blocks until total bytes are
// reported complete. label is typically the swarm id's hex string.
func watchProgress(surface *transfer.Surface, total int64, label string) {
	p := mpb.New(mpb.WithWidth(64))
	bar := p.AddBar(total,
		mpb.PrependDecorators(decor.Name(label, decor.WC{W: len(label) + 1})),
		mpb.AppendDecorators(decor.Percentage()),
	)

	var (
		last int64
		once sync.Once
		done = make(chan struct{})
	)
	surface.AddProgressCallback(func(completed, total int64) {
		bar.SetTotal(total, completed >= total)
		if delta := completed - last; delta > 0 {
			bar.IncrBy(int(delta))
			last = completed
		}
		if completed >= total {
			once.Do(func() { close(done) })
		}
	}, 0)

	p.Wait()
	<-done
	fmt.Println()
}
