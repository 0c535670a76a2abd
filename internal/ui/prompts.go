package ui

import (
	"github.com/charmbracelet/huh"
)

// ConfirmOption configures a Confirm prompt.
type ConfirmOption func(*confirmConfig)

type confirmConfig struct {
	affirmative string
	negative    string
	description string
}

// WithLabels sets custom affirmative/negative button labels for Confirm.
func WithLabels(affirmative, negative string) ConfirmOption {
	return func(c *confirmConfig) {
		c.affirmative = affirmative
		c.negative = negative
	}
}

// WithDescription sets the description text for a prompt.
func WithDescription(desc string) ConfirmOption {
	return func(c *confirmConfig) {
		c.description = desc
	}
}

// Confirm displays a yes/no confirmation prompt and returns the user's choice.
func Confirm(title string, opts ...ConfirmOption) (bool, error) {
	cfg := confirmConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	var result bool
	confirm := huh.NewConfirm().
		Title(title).
		Value(&result)

	if cfg.affirmative != "" {
		confirm = confirm.Affirmative(cfg.affirmative)
	}
	if cfg.negative != "" {
		confirm = confirm.Negative(cfg.negative)
	}
	if cfg.description != "" {
		confirm = confirm.Description(cfg.description)
	}

	form := huh.NewForm(
		huh.NewGroup(confirm),
	).WithTheme(ConveyTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return result, nil
}

// Input displays a single text input prompt and returns the entered value.
func Input(title, description string) (string, error) {
	var result string
	input := huh.NewInput().
		Title(title).
		Value(&result)

	if description != "" {
		input = input.Description(description)
	}

	form := huh.NewForm(
		huh.NewGroup(input),
	).WithTheme(ConveyTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return result, nil
}

// SelectOption represents a single option in a Select prompt.
type SelectOption[T comparable] struct {
	Label string
	Value T
}

// Select displays a selection prompt and returns the chosen value.
func Select[T comparable](title string, options []SelectOption[T]) (T, error) {
	var result T

	huhOpts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		huhOpts[i] = huh.NewOption(opt.Label, opt.Value)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[T]().
				Title(title).
				Options(huhOpts...).
				Value(&result),
		),
	).WithTheme(ConveyTheme())

	if err := form.Run(); err != nil {
		return result, err
	}
	return result, nil
}
