package runner

import (
	"io"

	"github.com/fatih/color"
)

// LogToStream writes colored progress messages to the output stream
func LogToStream(stream io.Writer, message string, colorAttr color.Attribute) {
	if stream != nil {
		c := color.New(colorAttr)
		c.Fprintln(stream, message)
	}
}
