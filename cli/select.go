// Package cli provides small interactive prompt helpers for amp-fsm
// command-line tools.
package cli

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// Select prompts the user to pick one of choices. Typing filters the list
// by prefix.
func Select(label string, choices []string) (string, error) {
	sel := &promptui.Select{
		Label: label,
		Items: choices,
		Searcher: func(input string, index int) bool {
			if len(input) == 0 {
				return false
			}

			return strings.HasPrefix(choices[index], input)
		},
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}

// Confirm prompts the user with a yes/no question and reports whether
// they answered yes.
func Confirm(label string) (bool, error) {
	prompt := &promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	if err != nil {
		// promptui reports a declined confirm as ErrAbort.
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
