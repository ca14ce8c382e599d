// FILE: logseer/src/cmd/token-gen/main.go
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	var (
		genToken = flag.Bool("t", false, "Generate random bearer token")
		tokenLen = flag.Int("l", 32, "Token length in bytes")
		hashMode = flag.Bool("hash", false, "Bcrypt-hash a token (will prompt if -p not provided)")
		token    = flag.String("p", "", "Token to hash (will prompt if not provided)")
		cost     = flag.Int("c", 10, "Bcrypt cost (10-31)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "LogSeer API Token Utility\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  Generate bearer token: %s -t [-l <length>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  Hash existing token:   %s -hash [-p <token>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	switch {
	case *genToken:
		generateToken(*tokenLen, *cost)
	case *hashMode:
		hashToken(*token, *cost)
	default:
		flag.Usage()
		os.Exit(1)
	}
}

func generateToken(length, cost int) {
	if length < 16 {
		fmt.Fprintf(os.Stderr, "Warning: Token length < 16 bytes is insecure\n")
	}

	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	b64 := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(b64), cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("# Token (give to the API client, store nowhere else):\n")
	fmt.Printf("# %s\n\n", b64)
	fmt.Println("# Add to logseer.toml under [api.auth]:")
	fmt.Printf("type = \"bearer\"\n")
	fmt.Printf("token_hashes = [\"%s\"]\n", string(hash))
}

func hashToken(token string, cost int) {
	if token == "" {
		token = promptToken("Enter token: ")
		confirm := promptToken("Confirm token: ")
		if token != confirm {
			fmt.Fprintf(os.Stderr, "Error: Tokens don't match\n")
			os.Exit(1)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("# Add to logseer.toml under [api.auth]:")
	fmt.Printf("token_hashes = [\"%s\"]\n", string(hash))
}

func promptToken(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token: %v\n", err)
		os.Exit(1)
	}
	return string(value)
}
