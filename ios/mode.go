package ios

import (
	"fmt"
	"strings"
)

// Mode selects how a synchronization run treats existing alternate icons.
type Mode string

const (
	// ModeAdd keeps existing icon sets and registry entries
	// and adds any that are missing.
	ModeAdd Mode = "add"
	// ModeReplace removes every alternate icon and
	// recreates them from the source images.
	ModeReplace Mode = "replace"
	// ModeRemoveAll removes every alternate icon.
	ModeRemoveAll Mode = "remove-all"
)

func (m Mode) String() string {
	return string(m)
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return ModeAdd, nil
	case "replace":
		return ModeReplace, nil
	case "remove-all", "removeall", "remove_all":
		return ModeRemoveAll, nil
	}

	return "", fmt.Errorf("invalid mode %q: must be one of add, replace, remove-all", s)
}

// UnmarshalText lets Mode be read from YAML and the environment.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode
	return nil
}
