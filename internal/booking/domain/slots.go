package domain

import "time"

// ServiceWindow is one bookable span of a restaurant day, bounds
// inclusive. Windows come from configuration, not computation.
type ServiceWindow struct {
	Open  string
	Close string
}

// StandardServiceWindows is the default lunch/dinner grid.
var StandardServiceWindows = []ServiceWindow{
	{Open: "11:00", Close: "14:00"},
	{Open: "18:00", Close: "21:30"},
}

// DefaultSlotStep is the grid granularity in minutes.
const DefaultSlotStep = 30

// SlotTimes expands service windows into the HH:MM grid the
// availability check walks. Invalid window bounds are skipped.
func SlotTimes(windows []ServiceWindow, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = DefaultSlotStep
	}

	slots := make([]string, 0, 16)
	for _, window := range windows {
		open, err := time.Parse("15:04", window.Open)
		if err != nil {
			continue
		}
		close, err := time.Parse("15:04", window.Close)
		if err != nil || close.Before(open) {
			continue
		}
		for t := open; !t.After(close); t = t.Add(time.Duration(stepMinutes) * time.Minute) {
			slots = append(slots, t.Format("15:04"))
		}
	}
	return slots
}
