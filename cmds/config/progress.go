package config

import (
	"time"

	"github.com/cheggaaa/pb/v3"
)

type maybeProgress struct {
	bar *pb.ProgressBar
}

// MaybeProgress only draws a bar for jobs big enough to need one.
func MaybeProgress(n int, prefix string) *maybeProgress {
	mp := &maybeProgress{}
	if n > 100 {
		mp.bar = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{etime . }}`).New(n)
		mp.bar.Set("prefix", prefix+" ")
		mp.bar.SetRefreshRate(time.Second)
	}
	return mp
}

func (mp *maybeProgress) Start() {
	if mp.bar != nil {
		mp.bar.Start()
	}
}

// Increment is safe to call from many goroutines.
func (mp *maybeProgress) Increment() {
	if mp.bar != nil {
		mp.bar.Increment()
	}
}

func (mp *maybeProgress) Finish() {
	if mp.bar != nil {
		mp.bar.Finish()
	}
}
