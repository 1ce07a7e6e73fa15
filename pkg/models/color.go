package models

import "fmt"

// Color is a label color understood by the service.
type Color string

const (
	Green  Color = "green"
	Yellow Color = "yellow"
	Orange Color = "orange"
	Red    Color = "red"
	Purple Color = "purple"
	Blue   Color = "blue"
	Sky    Color = "sky"
	Lime   Color = "lime"
	Pink   Color = "pink"
	Black  Color = "black"
)

var colors = map[Color]bool{
	Green: true, Yellow: true, Orange: true, Red: true, Purple: true,
	Blue: true, Sky: true, Lime: true, Pink: true, Black: true,
}

func (c Color) Validate() error {
	if !colors[c] {
		return fmt.Errorf("invalid label color %q", string(c))
	}
	return nil
}

func (c Color) String() string {
	return string(c)
}
