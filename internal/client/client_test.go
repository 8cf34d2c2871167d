package client

import (
	"errors"
	"net"
	"testing"

	"github.com/ananthvk/memkv/internal/resp"
)

// fakeServer answers every request on conn with the matching entry of replies and
// records the requests it saw
func fakeServer(t *testing.T, conn net.Conn, replies []resp.Value) <-chan []resp.Value {
	t.Helper()
	seen := make(chan []resp.Value, 1)
	go func() {
		defer conn.Close()
		decoder := resp.NewDecoder(conn)
		var requests []resp.Value
		for _, reply := range replies {
			req, err := decoder.Next()
			if err != nil {
				break
			}
			requests = append(requests, req)
			if _, err := conn.Write(resp.Encode(reply)); err != nil {
				break
			}
		}
		seen <- requests
	}()
	return seen
}

func TestClientDo(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	replies := []resp.Value{
		resp.SimpleString("OK"),
		resp.BulkStringFromString("value"),
		resp.Error("Unknown command: nope"),
	}
	seen := fakeServer(t, serverSide, replies)

	c := New(clientSide)
	defer c.Close()

	for i, args := range [][]string{{"SET", "key", "value"}, {"GET", "key"}, {"nope"}} {
		got, err := c.Do(args...)
		if err != nil {
			t.Fatalf("Do(%v) error = %v", args, err)
		}
		if !got.Equal(replies[i]) {
			t.Errorf("Do(%v) = %v, want %v", args, got, replies[i])
		}
	}

	requests := <-seen
	want := resp.Array(resp.BulkStringFromString("GET"), resp.BulkStringFromString("key"))
	if len(requests) != 3 || !requests[1].Equal(want) {
		t.Errorf("server saw %v, want second request %v", requests, want)
	}
}

func TestClientDoWithoutArguments(t *testing.T) {
	_, clientSide := net.Pipe()
	c := New(clientSide)
	defer c.Close()

	if _, err := c.Do(); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Do() error = %v, want %v", err, ErrNoCommand)
	}
}
