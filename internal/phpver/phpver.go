// Package phpver names the PHP language versions the analyzer can target.
package phpver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a PHP language version encoded as major*100+minor (8.1 is 801).
// The zero value is invalid.
type Version uint16

const (
	PHP52 Version = 502
	PHP53 Version = 503
	PHP54 Version = 504
	PHP55 Version = 505
	PHP56 Version = 506
	PHP70 Version = 700
	PHP71 Version = 701
	PHP72 Version = 702
	PHP73 Version = 703
	PHP74 Version = 704
	PHP80 Version = 800
	PHP81 Version = 801
	PHP82 Version = 802
	PHP83 Version = 803

	Oldest = PHP52
	Latest = PHP83
)

var known = []Version{
	PHP52, PHP53, PHP54, PHP55, PHP56,
	PHP70, PHP71, PHP72, PHP73, PHP74,
	PHP80, PHP81, PHP82, PHP83,
}

// All returns every supported version in ascending order.
func All() []Version {
	out := make([]Version, len(known))
	copy(out, known)
	return out
}

func (v Version) Major() int { return int(v) / 100 }
func (v Version) Minor() int { return int(v) % 100 }

// Valid reports whether v is one of the supported versions.
func (v Version) Valid() bool {
	for _, k := range known {
		if k == v {
			return true
		}
	}
	return false
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool { return v >= o }

func (v Version) String() string {
	if v == 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// Key renders the compact form used in rule keys, "81" for 8.1.
func (v Version) Key() string {
	return fmt.Sprintf("%d%d", v.Major(), v.Minor())
}

// Parse accepts "8.1", "8.1.12", "php8.1" and "PHP_8_1". The patch level is
// ignored.
func Parse(s string) (Version, error) {
	orig := s
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "php")
	s = strings.TrimLeft(s, "_- ")
	s = strings.ReplaceAll(s, "_", ".")
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid PHP version %q: want MAJOR.MINOR", orig)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid PHP version %q: %w", orig, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid PHP version %q: %w", orig, err)
	}
	if major < 0 || minor < 0 || minor > 99 {
		return 0, fmt.Errorf("invalid PHP version %q", orig)
	}
	v := Version(major*100 + minor)
	if !v.Valid() {
		return 0, fmt.Errorf("unsupported PHP version %s (supported %s to %s)", v, Oldest, Latest)
	}
	return v, nil
}

// MustParse is Parse for constants in tests and tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// UnmarshalText lets versions appear directly in TOML and flags.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
