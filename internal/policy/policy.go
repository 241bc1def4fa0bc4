// Package policy picks the output container for a probed image.
package policy

import (
	"github.com/AnyUserName/newsimg-cli/internal/media"
	"github.com/AnyUserName/newsimg-cli/internal/search"
)

// Decision is what to do after the alpha-preserving attempt.
type Decision int

const (
	// KeepAlpha accepts the alpha-preserving encoding as final.
	KeepAlpha Decision = iota
	// DegradeToOpaque drops transparency and runs the opaque search.
	DegradeToOpaque
)

func (d Decision) String() string {
	if d == KeepAlpha {
		return "keep-alpha"
	}
	return "degrade-to-opaque"
}

// Policy decides between the opaque and alpha-preserving containers.
type Policy struct {
	// AlphaShrinkSteps is how many extra width steps to try in the
	// alpha-preserving container before giving transparency up.
	// Zero means a single shot at the maximum width.
	AlphaShrinkSteps int
}

// Container returns the first container to try. Images without a
// translucent pixel always go straight to the opaque search.
func (p Policy) Container(props media.Properties) media.Container {
	if props.HasAlpha {
		return media.AlphaPreserving
	}
	return media.Opaque
}

// Resolve settles the alpha-preserving attempt. Transparency is only
// sacrificed when keeping it misses the byte budget; the switch is final.
func (p Policy) Resolve(alpha search.Outcome) Decision {
	if alpha.MetBudget && alpha.Container == media.AlphaPreserving {
		return KeepAlpha
	}
	return DegradeToOpaque
}
