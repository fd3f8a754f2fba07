package cli

import "os"

// ShowHelp prints usage information for swatch-classify.
func ShowHelp() {
	os.Stdout.WriteString(`swatch-classify
===============

Classifies face photos into a color season and prints one JSON document per file.

Usage:
  swatch-classify [options] FILE...

Options:
  -crop string
        Pixel crop "x,y,width,height" applied to every file
  -face string
        Normalized face box "x,y,width,height" in [0,1]
  -garments string
        Comma separated hex colors scored against each result
  -near-face
        Score garments as worn near the face
  -workers int
        Files classified concurrently (default CPU cores)
  -timeout duration
        Per-file deadline (default 30s)
  -pretty
        Indent JSON output
  -verbose
        Enable debug logging
  -help
        Show this help message

Exit status is 1 when any file fails.

Examples:
  swatch-classify portrait.jpg
  swatch-classify -face 0.3,0.2,0.4,0.5 -garments "#1F3A5F,#FF7F50" portrait.jpg
`)
}
