// cmd/genhash/main.go: prints the bcrypt hash of a password, for seeding
// usuarios.password_hash by hand.
//
//	genhash secreto
//	echo -n secreto | genhash -cost 14
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost, same as the auth service")
	flag.Parse()

	var password string
	switch flag.NArg() {
	case 0:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: genhash [-cost n] <password>  (or pipe it on stdin)")
			os.Exit(2)
		}
		password = strings.TrimRight(line, "\r\n")
	case 1:
		password = flag.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "usage: genhash [-cost n] <password>")
		os.Exit(2)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(h))
}
