package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mathclub/club-backend/internal/admincode"
	"github.com/mathclub/club-backend/internal/config"
	"golang.org/x/term"
)

// Prints the admin access code for the current window. With -watch it
// keeps printing as the code rotates.
func main() {
	watch := flag.Bool("watch", false, "Keep printing the code as it rotates")
	flag.Parse()

	cfg := config.Load()
	gen := admincode.New(cfg.AdminMasterSecret, cfg.AdminCodeWindow)

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	for {
		now := time.Now()
		code, expires := gen.Current(now), gen.ExpiresAt(now)

		if interactive {
			fmt.Printf("Admin code: %s  (valid until %s, %s left)\n",
				code, expires.Format("15:04:05"), expires.Sub(now).Round(time.Second))
		} else {
			// Plain output for scripts.
			fmt.Println(code)
		}

		if !*watch {
			return
		}
		time.Sleep(time.Until(expires) + 100*time.Millisecond)
	}
}
