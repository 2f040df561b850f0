package term

import (
	"os"

	"golang.org/x/term"
)

// rawState wraps term.State, mirroring the teacher's tui/term.go State.
type rawState struct {
	state *term.State
}

func enableRawMode(f *os.File) (*rawState, error) {
	oldState, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return &rawState{state: oldState}, nil
}

func disableRawMode(f *os.File, s *rawState) error {
	if s == nil || s.state == nil {
		return nil
	}
	return term.Restore(int(f.Fd()), s.state)
}
