package internal

import (
	"slices"
	"strings"
	"time"

	"github.com/ananthvk/memkv"
	"github.com/ananthvk/memkv/internal/resp"
)

// CommandFunc executes one command. It must not perform I/O: everything it needs
// comes from its arguments and the store.
type CommandFunc func(args []resp.Value, store *memkv.Store) (resp.Value, error)

// CommandError is a failure reported back to the client as an error reply.
// It never affects the connection.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func commandError(message string) error {
	return &CommandError{Message: message}
}

// Registry maps upper-cased command names to their handlers
type Registry struct {
	commands map[string]CommandFunc
	metrics  *Metrics
}

// NewRegistry returns a registry holding every built-in command. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	r := &Registry{
		commands: make(map[string]CommandFunc),
		metrics:  metrics,
	}
	for name, fn := range builtinCommands {
		r.Register(name, fn)
	}
	r.Register("COMMAND", r.handleCommand)
	return r
}

// Register adds or replaces the handler for name
func (r *Registry) Register(name string, fn CommandFunc) {
	r.commands[strings.ToUpper(name)] = fn
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch looks name up case-insensitively and runs its handler against store.
// An unknown name produces a CommandError carrying the name exactly as given.
func (r *Registry) Dispatch(name string, args []resp.Value, store *memkv.Store) (resp.Value, error) {
	commandName := strings.ToUpper(name)
	fn, exists := r.commands[commandName]
	if !exists {
		r.metrics.observeCommand("unknown", false, 0)
		return resp.Value{}, commandError("Unknown command: " + name)
	}

	start := time.Now()
	result, err := fn(args, store)
	r.metrics.observeCommand(commandName, err == nil, time.Since(start))
	return result, err
}

func (r *Registry) handleCommand(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	names := r.Names()
	values := make([]resp.Value, len(names))
	for i, name := range names {
		values[i] = resp.BulkStringFromString(name)
	}
	return resp.Array(values...), nil
}
