// cmd/tools/imagemap-tool/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"package-provider/pkg/imagemap"
)

var mapPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, showCmd, validateCmd} {
		fs.StringVar(&mapPath, "path", "configs/image-map.json", "Path to image map file")
	}

	// Add command flags
	idAdd := addCmd.String("id", "", "Hotel key (e.g., 118060)")
	tier := addCmd.String("tier", imagemap.Tier1280, "Width tier (1280 or 696)")
	url := addCmd.String("url", "", "Image URL")

	// Show command flags
	idShow := showCmd.String("id", "", "Hotel key to show")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *url == "" {
			fmt.Println("Error: id and url are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		added, err := addImage(*idAdd, *tier, *url)
		if err != nil {
			fmt.Printf("Error adding image: %v\n", err)
			os.Exit(1)
		}
		if !added {
			fmt.Printf("Image already present for %s (tier %s)\n", *idAdd, *tier)
			return
		}
		fmt.Printf("Added image for %s (tier %s)\n", *idAdd, *tier)

	case "show":
		showCmd.Parse(os.Args[2:])
		if err := showImages(*idShow); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateMap(); err != nil {
			fmt.Printf("Image map validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Image map validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addImage(hotelKey, tier, url string) (bool, error) {
	m, err := imagemap.Load(mapPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to load image map: %w", err)
		}
		m = imagemap.ImageMap{}
	}

	if tier != imagemap.Tier1280 && tier != imagemap.Tier696 {
		return false, fmt.Errorf("unknown tier %q", tier)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false, fmt.Errorf("url must be http(s): %s", url)
	}

	if !m.Add(hotelKey, tier, url) {
		return false, nil
	}
	return true, imagemap.Save(mapPath, m)
}

func showImages(hotelKey string) error {
	m, err := imagemap.Load(mapPath)
	if err != nil {
		return fmt.Errorf("failed to load image map: %w", err)
	}

	if hotelKey == "" {
		for _, key := range m.Keys() {
			fmt.Printf("%s\t%d image(s)\n", key, len(m.Lookup(key)))
		}
		return nil
	}

	urls := m.Lookup(hotelKey)
	if len(urls) == 0 {
		return fmt.Errorf("no images for hotel %s", hotelKey)
	}
	for _, u := range urls {
		fmt.Println(u)
	}
	return nil
}

func validateMap() error {
	m, err := imagemap.Load(mapPath)
	if err != nil {
		return fmt.Errorf("failed to load image map: %w", err)
	}

	problems := m.Validate()
	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s):\n  %s", len(problems), strings.Join(problems, "\n  "))
	}
	return nil
}

func help() {
	fmt.Println("Usage: imagemap-tool <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  add       Add an image URL for a hotel")
	fmt.Println("  show      List hotels, or the images used for one hotel")
	fmt.Println("  validate  Check tiers and URLs in the image map")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'imagemap-tool <command> -h' for flags.")
}
