package internal

import (
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/ananthvk/memkv"
	"github.com/ananthvk/memkv/internal/resp"
)

var builtinCommands = map[string]CommandFunc{
	"PING":     handlePing,
	"ECHO":     handleEcho,
	"SET":      handleSet,
	"GET":      handleGet,
	"DEL":      handleDel,
	"EXISTS":   handleExists,
	"INCR":     handleIncr,
	"DECR":     handleDecr,
	"EXPIRE":   handleExpire,
	"TTL":      handleTTL,
	"PERSIST":  handlePersist,
	"RENAME":   handleRename,
	"RENAMENX": handleRenameNX,
	"APPEND":   handleAppend,
	"GETRANGE": handleGetRange,
	"SETRANGE": handleSetRange,
	"GETSET":   handleGetSet,
	"TYPE":     handleType,
	"KEYS":     handleKeys,
	"DBSIZE":   handleDBSize,
	"FLUSHDB":  handleFlush,
	"FLUSHALL": handleFlush,
}

var okReply = resp.SimpleString("OK")

func handlePing(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	return resp.SimpleString("PONG"), nil
}

func handleEcho(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) < 1 {
		return resp.Value{}, commandError("ECHO requires at least one argument")
	}
	if !args[0].IsText() {
		return resp.Value{}, commandError("ECHO argument must be a string")
	}
	return args[0], nil
}

func handleSet(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) < 2 {
		return resp.Value{}, commandError("SET requires at least two arguments")
	}
	key, err := keyArg("SET", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	value := args[1]

	switch len(args) {
	case 2:
		store.Set(key, value)
		return okReply, nil
	case 3:
		if !isOption(args[2], "PX") {
			return resp.Value{}, commandError("invalid SET option")
		}
		return resp.Value{}, commandError("SET PX requires a value")
	case 4:
		if !isOption(args[2], "PX") {
			return resp.Value{}, commandError("invalid SET option")
		}
		px, err := integerArg("SET", "PX value", args[3])
		if err != nil {
			return resp.Value{}, err
		}
		if px < 0 {
			return resp.Value{}, commandError("TTL must be non-negative")
		}
		if err := store.SetWithTTL(key, value, px); err != nil {
			return resp.Value{}, storeError(err)
		}
		return okReply, nil
	}
	return resp.Value{}, commandError("SET accepts at most one option")
}

func handleGet(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, commandError("GET requires exactly one argument")
	}
	key, err := keyArg("GET", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	value, found := store.Get(key)
	if !found {
		return resp.NullBulkString(), nil
	}
	return value, nil
}

func handleDel(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, commandError("DEL requires at least one argument")
	}
	deleteCount := 0
	for _, arg := range args {
		key, err := keyArg("DEL", arg)
		if err != nil {
			return resp.Value{}, err
		}
		if store.Del(key) {
			deleteCount++
		}
	}
	return resp.Integer(int64(deleteCount)), nil
}

func handleExists(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, commandError("EXISTS requires at least one argument")
	}
	count := 0
	for _, arg := range args {
		key, err := keyArg("EXISTS", arg)
		if err != nil {
			return resp.Value{}, err
		}
		if store.Exists(key) {
			count++
		}
	}
	return resp.Integer(int64(count)), nil
}

func handleIncr(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	return incrDecr("INCR", args, store.Incr)
}

func handleDecr(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	return incrDecr("DECR", args, store.Decr)
}

func incrDecr(name string, args []resp.Value, op func(string) (int64, error)) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, commandError(name + " requires exactly one argument")
	}
	key, err := keyArg(name, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	n, err := op(key)
	if err != nil {
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(n), nil
}

func handleExpire(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, commandError("EXPIRE requires exactly two arguments")
	}
	key, err := keyArg("EXPIRE", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	seconds, err := integerArg("EXPIRE", "seconds", args[1])
	if err != nil {
		return resp.Value{}, err
	}
	if err := store.Expire(key, seconds); err != nil {
		if errors.Is(err, memkv.ErrKeyNotFound) {
			return resp.Integer(0), nil
		}
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(1), nil
}

func handleTTL(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, commandError("TTL requires exactly one argument")
	}
	key, err := keyArg("TTL", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	ttl, err := store.TTL(key)
	if err != nil {
		if errors.Is(err, memkv.ErrKeyNotFound) {
			return resp.Integer(-2), nil
		}
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(ttl), nil
}

func handlePersist(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, commandError("PERSIST requires exactly one argument")
	}
	key, err := keyArg("PERSIST", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	removed, err := store.Persist(key)
	if err != nil && !errors.Is(err, memkv.ErrKeyNotFound) {
		return resp.Value{}, storeError(err)
	}
	if removed {
		return resp.Integer(1), nil
	}
	return resp.Integer(0), nil
}

func handleRename(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	oldKey, newKey, err := twoKeys("RENAME", args)
	if err != nil {
		return resp.Value{}, err
	}
	if err := store.Rename(oldKey, newKey); err != nil {
		return resp.Value{}, storeError(err)
	}
	return okReply, nil
}

func handleRenameNX(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	oldKey, newKey, err := twoKeys("RENAMENX", args)
	if err != nil {
		return resp.Value{}, err
	}
	if err := store.RenameNX(oldKey, newKey); err != nil {
		if errors.Is(err, memkv.ErrKeyExists) {
			return resp.Integer(0), nil
		}
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(1), nil
}

func handleAppend(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, commandError("APPEND requires exactly two arguments")
	}
	key, err := keyArg("APPEND", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	text, err := textArg("APPEND", "value", args[1])
	if err != nil {
		return resp.Value{}, err
	}
	n, err := store.Append(key, text)
	if err != nil {
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(int64(n)), nil
}

func handleGetRange(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 3 {
		return resp.Value{}, commandError("GETRANGE requires exactly three arguments")
	}
	key, err := keyArg("GETRANGE", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	start, err := integerArg("GETRANGE", "start", args[1])
	if err != nil {
		return resp.Value{}, err
	}
	end, err := integerArg("GETRANGE", "end", args[2])
	if err != nil {
		return resp.Value{}, err
	}
	text, err := store.GetRange(key, start, end)
	if err != nil {
		return resp.Value{}, storeError(err)
	}
	return resp.BulkString(text), nil
}

func handleSetRange(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 3 {
		return resp.Value{}, commandError("SETRANGE requires exactly three arguments")
	}
	key, err := keyArg("SETRANGE", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	offset, err := integerArg("SETRANGE", "offset", args[1])
	if err != nil {
		return resp.Value{}, err
	}
	text, err := textArg("SETRANGE", "value", args[2])
	if err != nil {
		return resp.Value{}, err
	}
	n, err := store.SetRange(key, offset, text)
	if err != nil {
		return resp.Value{}, storeError(err)
	}
	return resp.Integer(int64(n)), nil
}

func handleGetSet(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 2 {
		return resp.Value{}, commandError("GETSET requires exactly two arguments")
	}
	key, err := keyArg("GETSET", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	text, err := textArg("GETSET", "value", args[1])
	if err != nil {
		return resp.Value{}, err
	}
	previous, err := store.GetSet(key, text)
	if err != nil {
		return resp.Value{}, storeError(err)
	}
	return previous, nil
}

func handleType(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) != 1 {
		return resp.Value{}, commandError("TYPE requires exactly one argument")
	}
	key, err := keyArg("TYPE", args[0])
	if err != nil {
		return resp.Value{}, err
	}
	return resp.SimpleString(store.Type(key)), nil
}

func handleKeys(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	if len(args) > 1 {
		return resp.Value{}, commandError("KEYS accepts at most one argument")
	}
	pattern := "*"
	if len(args) == 1 {
		text, err := textArg("KEYS", "pattern", args[0])
		if err != nil {
			return resp.Value{}, err
		}
		pattern = string(text)
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return resp.Value{}, commandError("invalid KEYS pattern")
	}

	values := make([]resp.Value, 0)
	for _, key := range store.Keys() {
		if matched, _ := path.Match(pattern, key); matched {
			values = append(values, resp.BulkStringFromString(key))
		}
	}
	return resp.Array(values...), nil
}

func handleDBSize(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	return resp.Integer(int64(store.Size())), nil
}

func handleFlush(args []resp.Value, store *memkv.Store) (resp.Value, error) {
	store.Flush()
	return okReply, nil
}

// keyArg requires a non-null bulk string
func keyArg(command string, arg resp.Value) (string, error) {
	if arg.Type != resp.ValueTypeBulkString {
		return "", commandError(command + " key must be a bulk string")
	}
	return string(arg.Buffer), nil
}

func textArg(command, name string, arg resp.Value) ([]byte, error) {
	if !arg.IsText() {
		return nil, commandError(command + " " + name + " must be a string")
	}
	return arg.Buffer, nil
}

func integerArg(command, name string, arg resp.Value) (int64, error) {
	if arg.Type == resp.ValueTypeInteger {
		return arg.Integer, nil
	}
	if arg.IsText() {
		if n, err := strconv.ParseInt(string(arg.Buffer), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, commandError(command + " " + name + " must be an integer")
}

func twoKeys(command string, args []resp.Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", commandError(command + " requires exactly two arguments")
	}
	first, err := keyArg(command, args[0])
	if err != nil {
		return "", "", err
	}
	second, err := keyArg(command, args[1])
	if err != nil {
		return "", "", err
	}
	return first, second, nil
}

func isOption(arg resp.Value, option string) bool {
	return arg.IsText() && strings.EqualFold(string(arg.Buffer), option)
}

func storeError(err error) error {
	if errors.Is(err, memkv.ErrKeyNotFound) {
		return commandError("no such key")
	}
	return commandError(err.Error())
}
