// Package envtable implements a shadow table of environment variables.
//
// A Table holds a private, ordered copy of an environment which can be
// modified and expanded without touching the process environment. Names may
// be matched case-sensitively, as on Unix systems, or regardless of case, as
// on Windows. Names and values are stored byte for byte, so an environment
// loaded in a table and written back with Environ is unchanged, whatever its
// encoding.
package envtable

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/segmentio/avl/compare"
	"github.com/segmentio/avl/container/dict"
)

// Table is an ordered set of environment variables.
type Table struct {
	vars *dict.Dict[string]
	log  logrus.FieldLogger
}

// New constructs an empty table. When fold is true, variable names are
// matched regardless of case and keep the spelling they were first set with.
func New(fold bool) *Table {
	keys := compare.Strings
	if fold {
		keys = compare.Fold
	}
	return &Table{
		vars: dict.New[string](keys),
		log:  logrus.StandardLogger(),
	}
}

// FromEnviron constructs a table loaded with the environment of the current
// process.
func FromEnviron(fold bool) *Table {
	t := New(fold)
	t.Load(os.Environ())
	return t
}

// SetLogger changes the logger the table reports skipped entries to.
func (t *Table) SetLogger(log logrus.FieldLogger) { t.log = log }

// Load adds entries formatted as NAME=value to the table. When an entry names
// a variable which is already present, its value replaces the existing one but
// the original spelling of the name is kept.
//
// Entries with no '=' sign or an empty name are skipped. Names starting with
// '=' are accepted, Windows uses them for per-drive working directories.
func (t *Table) Load(environ []string) {
	for _, kv := range environ {
		name, value, ok := split(kv)
		if !ok {
			t.log.WithField("entry", kv).Debug("skipping malformed environment entry")
			continue
		}
		t.Set(name, value)
	}
}

func split(kv string) (name, value string, ok bool) {
	// The separator is searched from the second byte so names like "=C:"
	// remain intact.
	if len(kv) < 2 {
		return "", "", false
	}
	i := strings.IndexByte(kv[1:], '=')
	if i < 0 {
		return "", "", false
	}
	return kv[:i+1], kv[i+2:], true
}

// Set sets the value of the variable name.
func (t *Table) Set(name, value string) {
	// Set cannot fail on a dictionary which is not a multimap.
	t.vars.Set(name, value)
}

// Get returns the value of the variable name, and a boolean indicating whether
// it was set.
func (t *Table) Get(name string) (string, bool) { return t.vars.Lookup(name) }

// Getenv returns the value of the variable name, or an empty string if it is
// not set.
func (t *Table) Getenv(name string) string {
	value, _ := t.vars.Lookup(name)
	return value
}

// Unset removes the variable name from the table, and reports whether it was
// set.
func (t *Table) Unset(name string) bool { return t.vars.Delete(name, nil) != 0 }

// Len returns the number of variables in the table.
func (t *Table) Len() int { return t.vars.Len() }

// Names returns the names of variables in the table in ascending order.
func (t *Table) Names() []string {
	names := make([]string, 0, t.vars.Len())
	for name := range t.vars.All() {
		names = append(names, name)
	}
	return names
}

// Environ returns the content of the table as a list of NAME=value strings,
// sorted by name, in the format used by os.Environ and exec.Cmd.
func (t *Table) Environ() []string {
	environ := make([]string, 0, t.vars.Len())
	for name, value := range t.vars.All() {
		environ = append(environ, name+"="+value)
	}
	return environ
}

// Expand replaces ${var} or $var in s with the values of variables in the
// table. Undefined variables are replaced with the empty string.
func (t *Table) Expand(s string) string { return os.Expand(s, t.Getenv) }
