package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Call records one command executed through a ScriptedRunner.
type Call struct {
	Name string
	Args []string
}

func (c Call) String() string {
	return renderCommand(c.Name, c.Args)
}

// Result scripts the outcome for commands whose rendered form contains Match.
type Result struct {
	Match  string
	Output string
	Err    error
}

// ScriptedRunner is a Runner for tests. It records every call and answers
// from a script; unscripted commands succeed with empty output.
type ScriptedRunner struct {
	mu     sync.Mutex
	script []Result
	calls  []Call
}

func NewScriptedRunner(script ...Result) *ScriptedRunner {
	return &ScriptedRunner{script: script}
}

func (sr *ScriptedRunner) Run(ctx context.Context, stream io.Writer, name string, args ...string) (string, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	call := Call{Name: name, Args: args}
	sr.calls = append(sr.calls, call)

	rendered := call.String()
	for _, res := range sr.script {
		if strings.Contains(rendered, res.Match) {
			if res.Err != nil {
				return res.Output, fmt.Errorf("command '%s' failed: %w", rendered, res.Err)
			}
			return res.Output, nil
		}
	}
	return "", nil
}

// Calls returns a copy of the recorded command history.
func (sr *ScriptedRunner) Calls() []Call {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	out := make([]Call, len(sr.calls))
	copy(out, sr.calls)
	return out
}

// Ran reports whether any recorded command contains the fragment.
func (sr *ScriptedRunner) Ran(fragment string) bool {
	for _, c := range sr.Calls() {
		if strings.Contains(c.String(), fragment) {
			return true
		}
	}
	return false
}
