// Command genhash prints a bcrypt hash for DEV_SEED_PASSWORD_HASH.
//
//	genhash [-cost 12] <password>
package main

import (
	"flag"
	"fmt"
	"os"

	"bizconsole/internal/devserver"
)

func main() {
	cost := flag.Int("cost", devserver.DefaultBcryptCost, "bcrypt cost")
	flag.Parse()

	password := devserver.DefaultSeedPassword
	if flag.NArg() > 0 {
		password = flag.Arg(0)
	}
	h, err := devserver.HashPassword(password, *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "genhash:", err)
		os.Exit(1)
	}
	fmt.Println(h)
}
