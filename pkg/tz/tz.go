package tz

import (
	"time"
	_ "time/tzdata"
)

// London is the Europe/London location (GMT/BST with automatic DST). Every
// date shown or parsed by the bot uses it.
var London *time.Location

func init() {
	var err error
	London, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic("tz: load Europe/London: " + err.Error())
	}
}
