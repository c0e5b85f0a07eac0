package cmd

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// terminal is the interactive surface the screening talks to.
type terminal interface {
	Ask(label, def string, validate func(string) error) (string, error)
	Choose(label string, items []string) (string, error)
}

type promptTerminal struct{}

func (promptTerminal) Ask(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: def != "",
	}
	if validate != nil {
		p.Validate = validate
	}

	value, err := p.Run()
	return value, promptError(err)
}

func (promptTerminal) Choose(label string, items []string) (string, error) {
	p := promptui.Select{
		Label: label,
		Items: items,
	}

	_, value, err := p.Run()
	return value, promptError(err)
}

// promptError maps Ctrl-C and Ctrl-D to errExit.
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}

func required(field string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
