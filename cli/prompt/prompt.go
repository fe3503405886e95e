// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package prompt

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/utils"
)

var (
	ErrInputEmpty    = errors.New("input is empty")
	ErrInputTooLarge = errors.New("input is too large")
	ErrInvalidChoice = errors.New("invalid choice")
)

// ValidateTag checks a namespace tag entered on the command line.
func ValidateTag(input string) error {
	if len(strings.TrimSpace(input)) > consts.MaxTagLen {
		return ErrInputTooLarge
	}
	return nil
}

// ParseContinue interprets a y/n answer.
func ParseContinue(input string) (bool, error) {
	if len(input) == 0 {
		return false, ErrInputEmpty
	}
	switch strings.ToLower(input) {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, ErrInvalidChoice
	}
}

func Continue() (bool, error) {
	promptText := promptui.Prompt{
		Label: "continue (y/n)",
		Validate: func(input string) error {
			_, err := ParseContinue(input)
			return err
		},
	}
	rawContinue, err := promptText.Run()
	if err != nil {
		return false, err
	}
	cont, err := ParseContinue(rawContinue)
	if err != nil {
		return false, err
	}
	if !cont {
		utils.Outf("{{red}}exiting...{{/}}\n")
	}
	return cont, nil
}
