package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// ConsoleChooser prompts on the terminal: it prints the numbered candidate
// list and reads a choice, where 0 cancels.
type ConsoleChooser struct{}

func (ConsoleChooser) Choose(header string, options []string, extra int) (int, error) {
	fmt.Println(headerStyle.Render(header))
	for i, opt := range options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}
	if extra > 0 {
		fmt.Println(faintStyle.Render(fmt.Sprintf("  ...and %d more results.", extra)))
	}

	var raw string
	input := huh.NewInput().
		Title("Choose a number (0 to cancel)").
		Validate(func(s string) error {
			if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
				return fmt.Errorf("enter a number")
			}
			return nil
		}).
		Value(&raw)

	if err := input.Run(); err != nil {
		// Aborting the prompt (ctrl+c, EOF) counts as declining.
		return 0, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, nil
	}
	return n, nil
}
