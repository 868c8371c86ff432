package service

import "github.com/fatih/color"

var (
	methodColors = map[string]*color.Color{
		"GET":    color.New(color.FgGreen),
		"POST":   color.New(color.FgBlue),
		"DELETE": color.New(color.FgYellow),
	}
	anyMethodColor = color.New(color.FgHiBlack)
)

func methodColor(method string) *color.Color {
	if c, ok := methodColors[method]; ok {
		return c
	}
	return anyMethodColor
}
