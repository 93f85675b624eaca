// Command genhash prints the bcrypt hash stored in users.password_hash for each argument,
// for seeding accounts directly in the database.
package main

import (
	"fmt"
	"os"

	"go-freelance-backend/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password> [password...]")
		os.Exit(2)
	}

	for _, pass := range os.Args[1:] {
		hash, err := auth.HashPassword(pass)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		fmt.Println(hash)
	}
}
