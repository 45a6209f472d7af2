package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Generates a random API key and its SHA-256 hash, for seeding an
// instructor row (or ADMIN_API_KEY) by hand.
func main() {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	key := hex.EncodeToString(raw)
	hash := sha256.Sum256([]byte(key))

	fmt.Printf("key:  %s\n", key)
	fmt.Printf("hash: %s\n", hex.EncodeToString(hash[:]))
}
