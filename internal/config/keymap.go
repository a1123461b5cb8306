package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// KeymapTable is the name of the global Lua table holding the key layout.
const KeymapTable = "keyboard_layout"

// Keymap maps lower case physical key names to CHIP-8 keys.
type Keymap map[string]uint8

// Lookup returns the CHIP-8 key bound to the physical key name.
func (k Keymap) Lookup(name string) (uint8, bool) {
	key, ok := k[strings.ToLower(name)]
	return key, ok
}

// DefaultKeymap returns the layout that places the 4x4 keypad on the left
// side of a QWERTY keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
func DefaultKeymap() Keymap {
	return Keymap{
		"x": 0x0, "1": 0x1, "2": 0x2, "3": 0x3,
		"q": 0x4, "w": 0x5, "e": 0x6, "a": 0x7,
		"s": 0x8, "d": 0x9, "z": 0xA, "c": 0xB,
		"4": 0xC, "r": 0xD, "f": 0xE, "v": 0xF,
	}
}

// LoadKeymap runs the Lua script at path and reads the keyboard_layout
// table it defines, for example:
//
//	keyboard_layout = { x = 0, ["1"] = 1, q = 4, v = 0xF }
//
// A missing file or table results in the default layout.
func LoadKeymap(logger *log.Logger, path string) (Keymap, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Keymap file not found, using default layout", log.String("file", path))
		return DefaultKeymap(), nil
	}

	state := lua.NewState()
	defer state.Close()

	if err := state.DoFile(path); err != nil {
		return nil, fmt.Errorf("running keymap script %s: %w", path, err)
	}

	table, ok := state.GetGlobal(KeymapTable).(*lua.LTable)
	if !ok {
		logger.Warn("Keymap script defines no layout table, using default layout",
			log.String("file", path), log.String("table", KeymapTable))
		return DefaultKeymap(), nil
	}

	keymap := Keymap{}
	table.ForEach(func(name, value lua.LValue) {
		keyName, ok := name.(lua.LString)
		if !ok {
			logger.Warn("Skipping keymap entry with non string key", log.String("key", name.String()))
			return
		}
		key, err := parseKey(value)
		if err != nil {
			logger.Warn("Skipping invalid keymap entry",
				log.String("key", string(keyName)), log.Err(err))
			return
		}
		keymap[strings.ToLower(string(keyName))] = key
	})
	return keymap, nil
}

func parseKey(value lua.LValue) (uint8, error) {
	var key uint64
	switch v := value.(type) {
	case lua.LNumber:
		f := float64(v)
		if f != float64(int64(f)) || f < 0 {
			return 0, fmt.Errorf("key value %s is not a key number", v.String())
		}
		key = uint64(f)
	case lua.LString:
		var err error
		key, err = strconv.ParseUint(strings.TrimPrefix(strings.ToLower(string(v)), "0x"), 16, 8)
		if err != nil {
			return 0, fmt.Errorf("parsing key value %q: %w", string(v), err)
		}
	default:
		return 0, fmt.Errorf("unsupported key value type %s", value.Type().String())
	}

	if key > 0xF {
		return 0, fmt.Errorf("key value %d out of range", key)
	}
	return uint8(key), nil
}
