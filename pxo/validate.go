package pxo

import (
	"fmt"
	"strings"
)

// ValidationError lists every inconsistency Validate found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pxo: invalid metadata: %s", strings.Join(e.Problems, "; "))
}

// Validate checks invariants ParseMetadata does not enforce: one cel per
// layer in every frame, dense image indices, opacity within [0,1] and tag
// ranges within the frame list.
//
// Loading never calls Validate; files Pixelorama itself would open may still
// fail it.
func (m *Metadata) Validate() error {
	var problems []string

	next := 0
	for f, frame := range m.Frames {
		if len(frame.Cels) != len(m.Layers) {
			problems = append(problems, fmt.Sprintf("frame %d has %d cels, want %d", f, len(frame.Cels), len(m.Layers)))
		}
		for c, cel := range frame.Cels {
			if cel.ImageIndex != next {
				problems = append(problems, fmt.Sprintf("frame %d cel %d has image index %d, want %d", f, c, cel.ImageIndex, next))
			}
			next++
			if cel.Opacity < 0 || cel.Opacity > 1 {
				problems = append(problems, fmt.Sprintf("frame %d cel %d has opacity %g", f, c, cel.Opacity))
			}
		}
	}

	for _, tag := range m.Tags {
		if tag.From > tag.To {
			problems = append(problems, fmt.Sprintf("tag %q starts at %d after it ends at %d", tag.Name, tag.From, tag.To))
		}
		if tag.To >= len(m.Frames) {
			problems = append(problems, fmt.Sprintf("tag %q ends at frame %d, have %d frames", tag.Name, tag.To, len(m.Frames)))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
