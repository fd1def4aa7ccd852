package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// secretSource resolves the gateway signing secret from an environment
// variable or by prompting on the terminal. The value is cached after the
// first successful read.
type secretSource struct {
	envVar string
	stdin  *os.File
	prompt io.Writer

	once  sync.Once
	value string
	err   error
}

func newSecretSource(envVar string) *secretSource {
	return &secretSource{envVar: strings.TrimSpace(envVar), stdin: os.Stdin, prompt: os.Stderr}
}

func (s *secretSource) Get() (string, error) {
	s.once.Do(func() {
		if s.envVar != "" {
			if value, ok := os.LookupEnv(s.envVar); ok {
				if strings.TrimSpace(value) == "" {
					s.err = fmt.Errorf("%s is set but empty", s.envVar)
					return
				}
				s.value = value
				return
			}
		}
		fd := int(s.stdin.Fd())
		if !term.IsTerminal(fd) {
			s.err = fmt.Errorf("signing secret required; set %s or run interactively", s.envVar)
			return
		}
		fmt.Fprint(s.prompt, "Enter gateway HMAC secret: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(s.prompt)
		if err != nil {
			s.err = fmt.Errorf("read secret: %w", err)
			return
		}
		if strings.TrimSpace(string(raw)) == "" {
			s.err = errors.New("signing secret cannot be empty")
			return
		}
		s.value = string(raw)
	})
	return s.value, s.err
}
