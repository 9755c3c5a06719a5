package resolver

import (
	"context"
	"errors"
)

// ErrDeclined is the error a Prompter returns when the operator declines to
// locate a file. The resolver then pins a failed sentinel for the artifact
// and suppresses further prompts for the remainder of the sweep.
var ErrDeclined = errors.New("resolver: operator declined to locate file")

// Prompter is the interactive fallback of the resolution chain. sarifnav's
// CLI implements it over stdin; embedding hosts supply their own. Suggestions
// are candidate local paths ranked by similarity to the logged path, best
// first; they may be empty.
type Prompter interface {
	ChoosePath(ctx context.Context, loggedPath string, suggestions []string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, loggedPath string, suggestions []string) (string, error)

// ChoosePath implements Prompter.
func (f PrompterFunc) ChoosePath(ctx context.Context, loggedPath string, suggestions []string) (string, error) {
	return f(ctx, loggedPath, suggestions)
}
