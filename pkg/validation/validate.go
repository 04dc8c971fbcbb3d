package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"pairlink/pkg/models"
)

// Rules bounds inbound client events. Zero values disable the bound.
type Rules struct {
	MaxContentChars int
}

var rules Rules

func SetRules(r Rules) { rules = r }

// ErrEmptyContent marks a send event with no content; such events are
// dropped without surfacing an error to the sender.
var ErrEmptyContent = errors.New("content is required")

// ValidateEvent checks an inbound client event that carries content.
// mark_seen events carry none and are not validated here.
func ValidateEvent(ev models.ClientEvent) error {
	if ev.Content == "" {
		return ErrEmptyContent
	}
	if !utf8.ValidString(ev.Content) {
		return fmt.Errorf("content is not valid utf-8")
	}
	if rules.MaxContentChars > 0 {
		if n := utf8.RuneCountInString(ev.Content); n > rules.MaxContentChars {
			return fmt.Errorf("content too long: %d > %d", n, rules.MaxContentChars)
		}
	}
	return nil
}
