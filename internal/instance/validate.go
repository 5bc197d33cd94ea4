package instance

import (
	"fmt"
	"regexp"
)

// MaxNameLen keeps <base>/instances/<name>/daemon.sock under the Unix
// socket path limit for typical home directories.
const MaxNameLen = 32

var nameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateName checks that name can be used as an instance directory: a
// lower-case letter followed by letters, digits, '-' or '_'.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("instance name is empty")
	case len(name) > MaxNameLen:
		return fmt.Errorf("instance name %q is longer than %d characters", name, MaxNameLen)
	case !nameRegexp.MatchString(name):
		return fmt.Errorf("invalid instance name %q: use a lower-case letter followed by a-z, 0-9, '-' or '_'", name)
	}
	return nil
}
