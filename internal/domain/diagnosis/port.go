package diagnosis

import "context"

// Diagnoser port. The rule engine is the default implementation and never
// returns an error; alternative classifiers behind the same contract may.
type Diagnoser interface {
	Diagnose(ctx context.Context, engineType, symptoms string) (Report, error)
}
