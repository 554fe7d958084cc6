package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Info shows a desktop notification.
func Info(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Alert is Info with a sound.
func Alert(title, message string) error {
	return beeep.Alert(title, message, "")
}

func FormatDailyPrompt(date string) (string, string) {
	title := "Daily reflection"
	msg := fmt.Sprintf("Nothing on the board for %s yet. Take a few minutes to reflect?", date)
	return title, msg
}
