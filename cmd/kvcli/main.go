package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ananthvk/memkv/internal/client"
)

func main() {
	app := &cli.App{
		Name:      "kvcli",
		Usage:     "send commands to a memkv server",
		ArgsUsage: "[command [arg ...]]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "server address",
				EnvVars: []string{"MEMKV_ADDRESS"},
				Value:   "127.0.0.1:6379",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "connect timeout",
				Value: 5 * time.Second,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "(error) %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	conn, err := client.Dial(ctx, c.String("address"))
	if err != nil {
		return err
	}
	defer conn.Close()

	if c.Args().Present() {
		reply, err := conn.Do(c.Args().Slice()...)
		if err != nil {
			return err
		}
		fmt.Println(FormatValue(reply))
		return nil
	}
	return repl(conn, c.String("address"))
}

func repl(conn *client.Client, address string) error {
	fmt.Printf("Connected to %s, type \"exit\" to quit\n", address)
	fmt.Print("> ")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			fmt.Print("> ")
			continue
		}

		args, err := SplitArgs(line)
		if err != nil {
			fmt.Printf("(error) %s\n", err)
			fmt.Print("> ")
			continue
		}
		reply, err := conn.Do(args...)
		if err != nil {
			return err
		}
		fmt.Println(FormatValue(reply))
		fmt.Print("> ")
	}
	return scanner.Err()
}
