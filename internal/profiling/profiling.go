package profiling

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Frame accumulates CPU time per named section for a single frame. It is
// owned by the render loop and not safe for concurrent use.
type Frame struct {
	start  time.Time
	totals map[string]time.Duration
	now    func() time.Time
}

// NewFrame returns an empty frame recorder.
func NewFrame() *Frame {
	return &Frame{totals: make(map[string]time.Duration), now: time.Now}
}

// Reset clears the totals and starts a new frame. Call at the top of each frame.
func (f *Frame) Reset() {
	for k := range f.totals {
		delete(f.totals, k)
	}
	f.start = f.now()
}

// Track returns a stop function that records the elapsed time under name.
// Usage: defer frame.Track("renderer.Render")()
func (f *Frame) Track(name string) func() {
	start := f.now()
	return func() {
		f.totals[name] += f.now().Sub(start)
	}
}

// Elapsed returns the time since Reset.
func (f *Frame) Elapsed() time.Duration {
	return f.now().Sub(f.start)
}

// Snapshot returns a copy of the current totals.
func (f *Frame) Snapshot() map[string]time.Duration {
	out := make(map[string]time.Duration, len(f.totals))
	for k, v := range f.totals {
		out[k] = v
	}
	return out
}

// TopN formats the n largest sections of the current frame.
// Example: "renderer.Render:4.2ms, glfw.SwapBuffers:2.1ms"
func (f *Frame) TopN(n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(f.totals))
	for k, v := range f.totals {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
