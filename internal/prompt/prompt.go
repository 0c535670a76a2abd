// Package prompt provides the interactive prompts shared by commands.
// A single cross-platform implementation on top of huh.
package prompt

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

func SimplePrompt(promptText string, handler func(input string) error) error {
	var result string
	input := huh.NewInput().
		Title(promptText).
		Value(&result)

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return err
	}

	return handler(result)
}

func SelectPrompt(promptText string, choices []string, handler func(choice string) error) error {
	var result string
	sel := huh.NewSelect[string]().
		Title(promptText).
		Options(huh.NewOptions(choices...)...).
		Value(&result)

	if err := huh.NewForm(huh.NewGroup(sel)).Run(); err != nil {
		return err
	}

	return handler(result)
}

func YesNoPrompt(promptText string) (bool, error) {
	var confirmed bool
	confirm := huh.NewConfirm().
		Title(promptText).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func SecretPrompt(promptText string, handler func(input string) error) error {
	var result string
	input := huh.NewInput().
		Title(promptText).
		EchoMode(huh.EchoModePassword).
		Value(&result)

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return err
	}

	return handler(result)
}

// YesNoFromReader reads a y/n answer from the given reader. Commands use
// it when stdin is not a terminal, and tests feed it a canned reader.
func YesNoFromReader(reader io.Reader) (bool, error) {
	if reader == nil {
		reader = os.Stdin
	}
	input, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "y", "yes", "":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, errors.New("invalid input, please enter Y to continue or N to abort")
	}
}
