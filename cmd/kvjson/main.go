package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ananthvk/memkv/internal/client"
	"github.com/ananthvk/memkv/internal/resp"
)

// UserProfile mimics a real-world document
type UserProfile struct {
	ID       string            `json:"id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	IsActive bool              `json:"is_active"`
	Age      int               `json:"age"`
	Tags     []string          `json:"tags"`
	Metadata map[string]string `json:"metadata"`
	// Payload pads the document to the requested size
	Payload string `json:"payload,omitempty"`
}

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.IntN(len(charset))]
	}
	return string(b)
}

// generateJSON returns a document of roughly targetSize bytes and the key to store it under
func generateJSON(targetSize int) ([]byte, string, error) {
	key := "user:" + uuid.NewString()

	user := UserProfile{
		ID:       key,
		Username: randomString(8),
		Email:    randomString(8) + "@example.com",
		IsActive: rand.IntN(2) == 1,
		Age:      rand.IntN(60) + 18,
		Tags:     []string{"developer", "golang", "cache", "benchmark"},
		Metadata: map[string]string{
			"login_ip": "192.168.1.1",
			"device":   "MacBook Pro",
		},
	}

	baseBytes, err := json.Marshal(user)
	if err != nil {
		return nil, "", err
	}
	if targetSize > len(baseBytes) {
		user.Payload = randomString(targetSize - len(baseBytes))
	}

	finalBytes, err := json.Marshal(user)
	if err != nil {
		return nil, "", err
	}
	return finalBytes, key, nil
}

func main() {
	app := &cli.App{
		Name:  "kvjson",
		Usage: "write JSON documents to a memkv server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "server address",
				EnvVars: []string{"MEMKV_ADDRESS"},
				Value:   "127.0.0.1:6379",
			},
			&cli.IntFlag{
				Name:  "n",
				Usage: "total number of documents to write",
				Value: 10000,
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "target size of each document in bytes",
				Value: 1024,
			},
			&cli.Int64Flag{
				Name:  "px",
				Usage: "expire every document after this many milliseconds, 0 keeps them forever",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	numOps := c.Int("n")
	targetSize := c.Int("size")
	px := c.Int64("px")
	if px < 0 {
		return fmt.Errorf("--px must not be negative")
	}

	ctx, cancel := context.WithTimeout(c.Context, 5*time.Second)
	defer cancel()
	conn, err := client.Dial(ctx, c.String("address"))
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Writing %d JSON documents (size: ~%d bytes each)...\n", numOps, targetSize)
	start := time.Now()

	failed := 0
	for i := range numOps {
		doc, key, err := generateJSON(targetSize)
		if err != nil {
			return err
		}

		args := []string{"SET", key, string(doc)}
		if px > 0 {
			args = append(args, "PX", strconv.FormatInt(px, 10))
		}
		reply, err := conn.Do(args...)
		if err != nil {
			return err
		}
		if reply.Type == resp.ValueTypeSimpleError {
			failed++
			fmt.Fprintf(os.Stderr, "write error: %s\n", reply.Buffer)
		}

		if i%1000 == 0 && i > 0 {
			fmt.Printf("\rWrote %d/%d documents...", i, numOps)
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("\nDone! Wrote %d documents in %s (%d failed)\n", numOps, elapsed, failed)
	fmt.Printf("Throughput: %.2f documents/sec\n", float64(numOps)/elapsed.Seconds())
	return nil
}
