package submission_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/cardscan/internal/submission"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    submission.State
		event   submission.Event
		want    submission.State
		wantErr bool
	}{
		{submission.Idle, submission.EventSelected, submission.FileSelected, false},
		{submission.FileSelected, submission.EventSelected, submission.FileSelected, false},
		{submission.ResultsShown, submission.EventSelected, submission.FileSelected, false},
		{submission.ErrorShown, submission.EventSelected, submission.FileSelected, false},
		{submission.Submitting, submission.EventSelected, submission.Submitting, false},

		{submission.Idle, submission.EventRejected, submission.Idle, false},
		{submission.FileSelected, submission.EventRejected, submission.FileSelected, false},
		{submission.ResultsShown, submission.EventRejected, submission.ResultsShown, false},

		{submission.FileSelected, submission.EventCleared, submission.Idle, false},
		{submission.Submitting, submission.EventCleared, submission.Idle, false},
		{submission.ResultsShown, submission.EventCleared, submission.Idle, false},
		{submission.ErrorShown, submission.EventCleared, submission.Idle, false},
		{submission.Idle, submission.EventCleared, submission.Idle, false},

		{submission.FileSelected, submission.EventSubmitted, submission.Submitting, false},
		{submission.ResultsShown, submission.EventSubmitted, submission.Submitting, false},
		{submission.ErrorShown, submission.EventSubmitted, submission.Submitting, false},
		{submission.Idle, submission.EventSubmitted, submission.Idle, true},
		{submission.Submitting, submission.EventSubmitted, submission.Submitting, true},

		{submission.Submitting, submission.EventSucceeded, submission.ResultsShown, false},
		{submission.Submitting, submission.EventFailed, submission.ErrorShown, false},
		{submission.Idle, submission.EventSucceeded, submission.Idle, true},
		{submission.FileSelected, submission.EventFailed, submission.FileSelected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			got, err := submission.Transition(tt.from, tt.event)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, submission.ErrInvalidTransition) {
				t.Errorf("error should wrap ErrInvalidTransition: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
