package sapling

import "github.com/rs/zerolog"

// SetDebugMode enables or disables tree depth and child count warnings.
// Safe to call while passes are running.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug.Store(enabled)
}

// debugCheckTreeDepth warns if the layer is nested deeper than the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(logger zerolog.Logger, n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent() {
		depth++
		if depth > MaxCloneDepth {
			break
		}
	}
	if depth > debugMaxTreeDepth {
		logger.Warn().
			Int("depth", depth).
			Int("threshold", debugMaxTreeDepth).
			Str("kind", n.Kind).
			Str("id", n.ID()).
			Msg("tree depth exceeds threshold")
	}
}

// debugCheckChildCount warns if a layer has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(logger zerolog.Logger, n *Node) {
	if len(n.Children) > debugMaxChildCount {
		logger.Warn().
			Int("children", len(n.Children)).
			Int("threshold", debugMaxChildCount).
			Str("kind", n.Kind).
			Str("id", n.ID()).
			Msg("layer child count exceeds threshold")
	}
}
