package keystore

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// PromptPassword reads a password from the terminal without echo.
func PromptPassword(prompt string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		Zero(pw)
		return nil, fmt.Errorf("password input failed: %w", err)
	}
	if len(pw) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	return pw, nil
}

func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
