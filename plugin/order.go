package plugin

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Order returns the registry's modules sorted so that every module comes
// after all of its requirements.
//
// Each pass schedules the modules whose requirements are already
// scheduled. A requirement that is neither scheduled nor registered fails
// with ErrMissingDependency. Passes are bounded by twice the module count;
// running out of passes means the remaining modules require each other and
// fails with ErrCircularDependency.
func Order(r *Registry) ([]Named, error) {
	names, remaining := r.snapshot()
	sorted := make([]Named, 0, len(names))
	prepared := make(map[string]bool, len(names))

	tries := len(names) * 2
	for len(remaining) > 0 {
		tries--
		if tries < 0 {
			pending := make([]string, 0, len(remaining))
			for _, name := range names {
				if _, ok := remaining[name]; ok {
					pending = append(pending, name)
				}
			}
			log.Warn().Strs("modules", pending).Msg("modules not registered in any load group")
			return nil, fmt.Errorf("%w, stopping: %v", ErrCircularDependency, pending)
		}

	next:
		for _, name := range names {
			reg, ok := remaining[name]
			if !ok {
				continue
			}
			for _, required := range reg.Requires {
				_, waiting := remaining[required]
				if !prepared[required] && !waiting {
					return nil, fmt.Errorf("module %s is %w: %s", name, ErrMissingDependency, required)
				}
				if waiting {
					continue next
				}
			}

			sorted = append(sorted, Named{Name: name, Registration: reg})
			delete(remaining, name)
			prepared[name] = true
		}
	}
	return sorted, nil
}
