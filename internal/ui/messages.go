package ui

import (
	"time"

	"github.com/OpenDeskLab/DeskMate/internal/pomodoro"
)

// SearchQuery carries the title-bar search text to the sidebar, which
// filters its menu tree by it. Sent on every change, empty text included.
type SearchQuery struct {
	Text string
}

// TimerStatus is the pomodoro panel's compact countdown, sent to the
// status bar whenever the displayed second, phase or run state changes.
type TimerStatus struct {
	Phase     pomodoro.Phase
	Remaining time.Duration
	Running   bool
}

// Notice asks the toast overlay to show a transient message. Route these
// through App.Notify, which makes sure the overlay exists first.
type Notice struct {
	Text  string
	Error bool
}
