package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner renders the CLI banner with a version tag.
func PrintBanner(version string) {
	p := termenv.ColorProfile()

	s1 := termenv.String("                 _            ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  _ __  __ _ _ _| |___ _  _   ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | '_ \\/ _` | '_| / -_) || |  ").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" | .__/\\__,_|_| |_\\___|\\_, |  ").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |_|                   |__/   ").Foreground(p.Color("#f472b6"))

	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Printf("  conversation flows · v%s\n\n", version)
}
