// Command peertoken prints the bcrypt hash to configure as PEER_TOKEN_HASH.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Zaqui712/B-FO/internal/pkg/auth"
)

func main() {
	token, err := readToken(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "peertoken: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.NewBcryptHasher(0).Hash(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "peertoken: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// readToken takes the first argument, or the first line of stdin when no argument is given.
func readToken(args []string) (string, error) {
	if len(args) > 0 {
		return validToken(args[0])
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read token: %w", err)
	}
	return validToken(strings.TrimRight(line, "\r\n"))
}

func validToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}
