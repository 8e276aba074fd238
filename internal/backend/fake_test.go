package backend

import (
	"context"

	"github.com/vault-cli/vaults/internal/process"
)

// fakeRunner records commands and replies with canned outcomes keyed by command name
type fakeRunner struct {
	calls    []process.Command
	outcomes map[string]*process.Outcome
	errs     map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outcomes: make(map[string]*process.Outcome),
		errs:     make(map[string]error),
	}
}

func (f *fakeRunner) exit(name string, code int) *fakeRunner {
	f.outcomes[name] = &process.Outcome{ExitCode: code, HasExitCode: true}
	return f
}

func (f *fakeRunner) signal(name string) *fakeRunner {
	f.outcomes[name] = &process.Outcome{HasExitCode: false}
	return f
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Outcome, error) {
	recorded := cmd
	if cmd.Stdin != nil {
		recorded.Stdin = append([]byte(nil), cmd.Stdin...)
	}
	f.calls = append(f.calls, recorded)

	if err, ok := f.errs[cmd.Name]; ok {
		return nil, err
	}
	if out, ok := f.outcomes[cmd.Name]; ok {
		return out, nil
	}
	return &process.Outcome{ExitCode: 0, HasExitCode: true}, nil
}

func (f *fakeRunner) last() process.Command {
	return f.calls[len(f.calls)-1]
}
