package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

type OutcomeFlag string

const (
	OutcomeSuccess OutcomeFlag = "success"
	OutcomeFailure OutcomeFlag = "failure"
)

// Set implements pflag.Value.
func (o *OutcomeFlag) Set(v string) error {
	switch v {
	case string(OutcomeSuccess), "s", "y":
		*o = OutcomeSuccess
	case string(OutcomeFailure), "f", "n":
		*o = OutcomeFailure
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, OutcomeSuccess, OutcomeFailure)
	}
	return nil
}

// String implements pflag.Value.
func (o *OutcomeFlag) String() string {
	if o == nil {
		return ""
	}
	return string(*o)
}

// Type implements pflag.Value.
func (o *OutcomeFlag) Type() string {
	return "OutcomeFlag"
}

func (o OutcomeFlag) Successful() bool {
	return o == OutcomeSuccess
}

type ReviewOptionFlag repetition.ReviewOption

// Set implements pflag.Value.
func (f *ReviewOptionFlag) Set(v string) error {
	option, err := repetition.ParseReviewOption(v)
	if err != nil {
		return fmt.Errorf("invalid value %q, valid values are %q, %q or %q", v,
			repetition.ReviewOptionEasy, repetition.ReviewOptionDifficult, repetition.ReviewOptionForgot)
	}
	*f = ReviewOptionFlag(option)
	return nil
}

// String implements pflag.Value.
func (f *ReviewOptionFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *ReviewOptionFlag) Type() string {
	return "ReviewOptionFlag"
}

var (
	_ pflag.Value = (*OutcomeFlag)(nil)
	_ pflag.Value = (*ReviewOptionFlag)(nil)
)
