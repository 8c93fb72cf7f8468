package tracking

// Preprocessing tuning. Distances are source-screen pixels, durations
// milliseconds.
const (
	decimateDistance   = 3.0
	protectionWindowMs = 100
	quietGapMs         = 200

	dragMinPathPx         = 20.0
	dragFallbackMinPathPx = 50.0
)

// DragSpan is an inferred click-and-drag gesture.
type DragSpan struct {
	StartT, EndT   int64
	StartX, StartY float64
	EndX, EndY     float64
}

// Preprocess decimates mouse moves and infers drag spans. The returned
// event list preserves every non-MouseMove event unchanged and in order.
func Preprocess(events []Event) ([]Event, []DragSpan) {
	return Decimate(events), InferDrags(events)
}

// Decimate drops mouse moves that carry no signal: a move survives only
// if it traveled far enough from the last kept move, sits inside the
// protection window of a significant event, or is the first move after a
// quiet gap. Thinning the stream this way creates the temporal gaps idle
// detection relies on.
func Decimate(events []Event) []Event {
	// Collect timestamps of significant events for the protection window.
	var significant []int64
	for _, ev := range events {
		switch ev.Kind {
		case KindClick, KindKeyPress, KindScroll:
			significant = append(significant, ev.T)
		}
	}
	sigIdx := 0
	protected := func(t int64) bool {
		// significant is sorted because events are; advance a cursor past
		// entries that can no longer match.
		for sigIdx < len(significant) && significant[sigIdx] < t-protectionWindowMs {
			sigIdx++
		}
		return sigIdx < len(significant) && significant[sigIdx] <= t+protectionWindowMs
	}

	out := make([]Event, 0, len(events))
	haveKept := false
	var lastKept Event
	var lastMoveT int64
	haveMove := false
	for _, ev := range events {
		if ev.Kind != KindMouseMove {
			out = append(out, ev)
			continue
		}
		keep := false
		switch {
		case !haveKept:
			keep = true
		case Distance(lastKept.X, lastKept.Y, ev.X, ev.Y) >= decimateDistance:
			keep = true
		case protected(ev.T):
			keep = true
		case haveMove && ev.T-lastMoveT >= quietGapMs:
			keep = true
		}
		if keep {
			out = append(out, ev)
			lastKept = ev
			haveKept = true
		}
		lastMoveT = ev.T
		haveMove = true
	}
	return out
}

// InferDrags finds click-move-release patterns. A click matched by a
// later release of the same button becomes a drag when the cumulative
// mouse path between them exceeds the threshold. Without a release the
// span falls back to a higher path threshold and terminates at the last
// move before the next click.
func InferDrags(events []Event) []DragSpan {
	var spans []DragSpan
	for i, ev := range events {
		if ev.Kind != KindClick {
			continue
		}
		path := 0.0
		lastX, lastY := ev.X, ev.Y
		var lastMove *Event
		matched := false
		for j := i + 1; j < len(events); j++ {
			next := events[j]
			switch next.Kind {
			case KindMouseMove:
				path += Distance(lastX, lastY, next.X, next.Y)
				lastX, lastY = next.X, next.Y
				mv := next
				lastMove = &mv
			case KindClickRelease:
				if next.Button != ev.Button {
					continue
				}
				if path > dragMinPathPx {
					spans = append(spans, DragSpan{
						StartT: ev.T, EndT: next.T,
						StartX: ev.X, StartY: ev.Y,
						EndX: next.X, EndY: next.Y,
					})
				}
				matched = true
			case KindClick:
				// No release before the next click: use the fallback.
				if path > dragFallbackMinPathPx && lastMove != nil {
					spans = append(spans, DragSpan{
						StartT: ev.T, EndT: lastMove.T,
						StartX: ev.X, StartY: ev.Y,
						EndX: lastMove.X, EndY: lastMove.Y,
					})
				}
				matched = true
			}
			if matched {
				break
			}
		}
		if !matched && path > dragFallbackMinPathPx && lastMove != nil {
			// Trailing drag with neither release nor another click.
			spans = append(spans, DragSpan{
				StartT: ev.T, EndT: lastMove.T,
				StartX: ev.X, StartY: ev.Y,
				EndX: lastMove.X, EndY: lastMove.Y,
			})
		}
	}
	return spans
}

// CursorSample is one point of the raw or smoothed cursor path.
type CursorSample struct {
	T    int64
	X, Y float64
}

// CursorPath projects the raw event stream onto the cursor position over
// time: every mouse move plus click/release positions, which pin the
// cursor even when moves were sparse.
func CursorPath(events []Event) []CursorSample {
	var path []CursorSample
	for _, ev := range events {
		switch ev.Kind {
		case KindMouseMove, KindClick, KindClickRelease:
			path = append(path, CursorSample{T: ev.T, X: ev.X, Y: ev.Y})
		}
	}
	return path
}
