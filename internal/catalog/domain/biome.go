package domain

import "time"

// Biome is one of the themed environments a restaurant belongs to.
// Code is the 2-letter tag reused in reservation confirmation codes.
type Biome struct {
	ID          string
	Name        string
	Code        string
	Icon        string
	Description string
	Climate     string
	CreatedAt   time.Time
}
