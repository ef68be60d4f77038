package main

import (
	"flag"
	"fmt"
	"log"

	"reloadpanel/pkg/ui"
)

func main() {
	out := flag.String("o", "Icon.png", "output file")
	size := flag.Int("size", 512, "edge length in pixels")
	flag.Parse()

	if err := ui.WriteIconPNG(*out, *size); err != nil {
		log.Fatal("Failed to generate icon:", err)
	}
	fmt.Println("Icon generated successfully:", *out)
}
