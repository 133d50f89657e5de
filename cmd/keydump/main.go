package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/corvidterm/keypipe/keyboard"
)

// Kitty keyboard protocol escape sequences
const (
	// Enable Kitty keyboard protocol with all flags
	// Flags: 1=disambiguate escape codes, 2=report event types, 4=report alternate keys, 8=report all keys as escape codes, 16=report associated text
	kittyEnable  = "\x1b[>1u"  // Basic mode (disambiguate escape codes)
	kittyEnhance = "\x1b[>31u" // Full mode (all flags)
	kittyDisable = "\x1b[<u"   // Pop/disable

	// Mouse reporting
	mouseEnableSGR    = "\x1b[?1006h" // SGR mouse mode
	mouseEnableBasic  = "\x1b[?1000h" // Basic mouse tracking
	mouseEnableMotion = "\x1b[?1002h" // Button event + motion tracking
	mouseDisable      = "\x1b[?1000l\x1b[?1002l\x1b[?1006l"
)

func main() {
	kittyMode := flag.Bool("kitty", false, "Enable Kitty keyboard protocol")
	kittyFull := flag.Bool("kitty-full", false, "Enable Kitty keyboard protocol with all flags")
	mouseMode := flag.Bool("mouse", false, "Enable mouse reporting (SGR mode)")
	pasteWorkaround := flag.Bool("paste-workaround", false, "Coalesce raw input through the short-flush passthrough path instead of incremental decoding")
	flag.Parse()

	provider := keyboard.New(keyboard.Config{
		KittyProtocolEnabled: *kittyMode || *kittyFull,
		PasteWorkaround:      *pasteWorkaround,
	}, keyboard.WithInputReader(os.Stdin))

	done := make(chan struct{})
	provider.Subscribe(func(event keyboard.KeyEvent) {
		fmt.Printf("%+v\n", event)
		if event.Ctrl && event.Name == "c" {
			close(done)
		}
	})

	cleanupTerminalModes := func() {
		if *kittyMode || *kittyFull {
			fmt.Print(kittyDisable)
		}
		if *mouseMode {
			fmt.Print(mouseDisable)
		}
	}

	if *kittyMode || *kittyFull {
		if *kittyFull {
			fmt.Print(kittyEnhance)
			fmt.Println("Kitty keyboard protocol enabled (full mode - all flags)")
		} else {
			fmt.Print(kittyEnable)
			fmt.Println("Kitty keyboard protocol enabled (basic mode)")
		}
	}
	if *mouseMode {
		fmt.Print(mouseEnableBasic + mouseEnableMotion + mouseEnableSGR)
		fmt.Println("Mouse reporting enabled (SGR mode)")
	}

	if err := provider.Activate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		cleanupTerminalModes()
		os.Exit(1)
	}

	defer func() {
		provider.Deactivate()
		cleanupTerminalModes()
	}()

	fmt.Println("Press keys (Ctrl+C to exit):")
	<-done
}
