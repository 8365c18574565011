// cmd/genhash prints a bcrypt hash for the password given as first argument.
package main

import (
	"fmt"
	"os"

	"github.com/myr2601/mintyapp/internal/infra"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := infra.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
