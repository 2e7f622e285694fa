package commands

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// promptSelect shows an interactive list and returns the chosen item
func promptSelect(label string, items []string, current string) (string, error) {
	cursor := 0
	for i, item := range items {
		if item == current {
			cursor = i
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
		CursorPos: cursor,
	}

	_, value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return value, nil
}

// confirm asks a yes/no question. Without a terminal the answer must be
// given up front with --yes.
func confirm(env *Env, yes bool, question string) error {
	if yes {
		return nil
	}
	if !env.interactive() {
		return fmt.Errorf("refusing to %s without confirmation (use --yes)", question)
	}

	prompt := promptui.Prompt{
		Label:     "Are you sure you want to " + question,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("cancelled")
	}
	return nil
}
