package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"login-ui/internal/auth"
)

var version = "dev"

func main() {
	fmt.Printf("login-cli %s\n", version)
	if len(os.Args) < 2 {
		fmt.Println("usage: login-cli [users|check <username>]")
		os.Exit(1)
	}

	credentials, err := auth.LoadCredentials(os.Getenv("UI_USERS_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "users":
		for _, name := range credentials.Usernames() {
			fmt.Println(name)
		}
	case "check":
		if len(os.Args) < 3 {
			fmt.Println("check requires username argument")
			os.Exit(1)
		}
		check(credentials, os.Args[2])
	default:
		fmt.Println("unknown command")
		os.Exit(1)
	}
}

func check(credentials *auth.Credentials, username string) {
	password := readPassword()
	if !credentials.Check(username, password) {
		fmt.Println("invalid")
		os.Exit(1)
	}
	fmt.Println("ok")
}

// readPassword reads one line from stdin. Only the line terminator is
// stripped; the comparison is exact.
func readPassword() string {
	reader := bufio.NewReader(os.Stdin)
	text, _ := reader.ReadString('\n')
	return strings.TrimRight(text, "\r\n")
}
