package main

import (
	"fmt"
	"strings"

	"histo-viewer/internal/peel"
)

// statusLine summarises the last second for the window title.
func statusLine(title string, fps int, st peel.FrameStats, cfg peel.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | FPS: %d | peels: %d/%d", title, fps, st.Peels, cfg.MaxPeels)
	if cfg.UseOcclusionQueries() {
		fmt.Fprintf(&b, " (adaptive %.3g)", cfg.OcclusionRatio)
		if st.Stalled {
			b.WriteString(" stalled")
		}
	}
	if !cfg.PointPicking {
		b.WriteString(" | picking off")
	}
	if cfg.Debug != peel.DebugNone {
		fmt.Fprintf(&b, " | view: %s", cfg.Debug)
	}
	return b.String()
}
