package prompt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// Input asks for free text.
func Input(label, defaultValue string) (string, error) {
	return run(&promptui.Prompt{Label: label, Default: defaultValue})
}

// InputRequired asks for non-empty text.
func InputRequired(label string) (string, error) {
	return run(&promptui.Prompt{Label: label, Validate: validateRequired})
}

// InputPort asks for a TCP port.
func InputPort(label string, defaultValue int) (int, error) {
	result, err := run(&promptui.Prompt{
		Label:    label,
		Default:  strconv.Itoa(defaultValue),
		Validate: validatePort,
	})
	if err != nil {
		return 0, err
	}
	port, _ := strconv.Atoi(strings.TrimSpace(result))
	return port, nil
}

// InputURL asks for an http(s) URL. Empty input is accepted when optional.
func InputURL(label string, optional bool) (string, error) {
	validate := validateURL
	if optional {
		validate = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return nil
			}
			return validateURL(s)
		}
		label += " (optional)"
	}
	result, err := run(&promptui.Prompt{Label: label, Validate: validate})
	return strings.TrimSpace(result), err
}

// Password asks for masked input.
func Password(label string) (string, error) {
	return run(&promptui.Prompt{Label: label, Mask: '*'})
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be a valid port (1-65535)")
	}
	return nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an http or https URL")
	}
	return nil
}
