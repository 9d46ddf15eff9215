// Package confmap provides an ordered configuration map: a set of sections,
// each holding options associated with a list of string values.
//
// A ConfMap can be updated from strings of the form
//
//	<section>.<option> = <value_1>, <value_2>
//	<section>.<option> : <value_1> <value_2>
//	<section>.<option> =
//
// which makes it convenient to apply overrides given on a command line, and
// from YAML documents mapping section names to mappings of option names to
// scalar or sequence values:
//
//	Logging:
//	  Level: debug
//	  Outputs: [stderr, /var/log/app.log]
//
// Section and option names are kept sorted. When the map is created to ignore
// case, names differing only by case designate the same section or option, and
// retain the spelling they were first given.
package confmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/segmentio/avl/compare"
	"github.com/segmentio/avl/container/dict"
)

var (
	// ErrMalformed is returned when an update string or a YAML document does
	// not have the expected structure.
	ErrMalformed = errors.New("malformed configuration")

	// ErrSectionNotFound is returned when looking up a section which does not
	// exist.
	ErrSectionNotFound = errors.New("section not found")

	// ErrOptionNotFound is returned when looking up an option which does not
	// exist in its section.
	ErrOptionNotFound = errors.New("option not found")

	// ErrValueCount is returned when an option does not have the number of
	// values expected by the accessor.
	ErrValueCount = errors.New("wrong number of values")
)

type options = dict.Dict[[]string]

// ConfMap is an ordered map of configuration sections.
type ConfMap struct {
	names    func(string, string) int
	sections *dict.Dict[*options]
	log      logrus.FieldLogger
}

// New constructs an empty configuration map. When fold is true, section and
// option names are matched regardless of case.
func New(fold bool) *ConfMap {
	names := compare.Strings
	if fold {
		names = compare.Fold
	}
	return &ConfMap{
		names:    names,
		sections: dict.New[*options](names),
		log:      logrus.StandardLogger(),
	}
}

// SetLogger changes the logger the map reports overridden options to.
func (c *ConfMap) SetLogger(log logrus.FieldLogger) { c.log = log }

// Set associates values with the option of section, creating them if needed
// and replacing the previous values of the option.
func (c *ConfMap) Set(section, option string, values ...string) {
	entry, _ := c.sections.InsertIfAbsent(section, nil)
	if entry.Value == nil {
		entry.Value = dict.New[[]string](c.names)
	}
	if values == nil {
		values = []string{}
	}
	// Set cannot fail on a dictionary which is not a multimap.
	entry.Value.Set(option, values)
}

// UpdateFromString applies an update of the form "section.option=values".
func (c *ConfMap) UpdateFromString(update string) error {
	section, option, values, err := parseUpdate(update)
	if err != nil {
		return err
	}
	c.Set(section, option, values...)
	return nil
}

// UpdateFromStrings applies a list of updates, stopping at the first one which
// is malformed.
func (c *ConfMap) UpdateFromStrings(updates []string) error {
	for _, update := range updates {
		if err := c.UpdateFromString(update); err != nil {
			return err
		}
	}
	return nil
}

func parseUpdate(update string) (section, option string, values []string, err error) {
	dot := strings.IndexByte(update, '.')
	if dot < 0 {
		return "", "", nil, fmt.Errorf("%w: %q: missing '.' between section and option", ErrMalformed, update)
	}
	rest := update[dot+1:]
	sep := strings.IndexAny(rest, "=:")
	if sep < 0 {
		return "", "", nil, fmt.Errorf("%w: %q: missing '=' or ':' after option", ErrMalformed, update)
	}
	section = strings.TrimSpace(update[:dot])
	option = strings.TrimSpace(rest[:sep])
	if section == "" || option == "" {
		return "", "", nil, fmt.Errorf("%w: %q: empty section or option name", ErrMalformed, update)
	}
	return section, option, splitValues(rest[sep+1:]), nil
}

func splitValues(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
}

func (c *ConfMap) section(name string) (*options, error) {
	opts, found := c.sections.Lookup(name)
	if !found {
		return nil, fmt.Errorf("%w: [%s]", ErrSectionNotFound, name)
	}
	return opts, nil
}

// Values returns the values of the option of section.
func (c *ConfMap) Values(section, option string) ([]string, error) {
	opts, err := c.section(section)
	if err != nil {
		return nil, err
	}
	values, found := opts.Lookup(option)
	if !found {
		return nil, fmt.Errorf("%w: [%s]%s", ErrOptionNotFound, section, option)
	}
	return values, nil
}

// String returns the value of an option which must have exactly one value.
func (c *ConfMap) String(section, option string) (string, error) {
	values, err := c.Values(section, option)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("%w: [%s]%s has %d values, expected 1", ErrValueCount, section, option, len(values))
	}
	return values[0], nil
}

// Bool returns the value of an option holding a single boolean value.
func (c *ConfMap) Bool(section, option string) (bool, error) {
	s, err := c.String(section, option)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("[%s]%s: %w", section, option, err)
	}
	return b, nil
}

// Sections returns the names of the sections of the map, in ascending order.
func (c *ConfMap) Sections() []string {
	names := make([]string, 0, c.sections.Len())
	for name := range c.sections.All() {
		names = append(names, name)
	}
	return names
}

// Options returns the names of the options of section, in ascending order.
func (c *ConfMap) Options(section string) ([]string, error) {
	opts, err := c.section(section)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, opts.Len())
	for name := range opts.All() {
		names = append(names, name)
	}
	return names, nil
}

// Delete removes the option of section and reports whether it existed.
// Sections left without options are removed as well.
func (c *ConfMap) Delete(section, option string) bool {
	opts, found := c.sections.Lookup(section)
	if !found || opts.Delete(option, nil) == 0 {
		return false
	}
	if opts.Len() == 0 {
		c.sections.Delete(section, nil)
	}
	return true
}

// LoadYAML applies the content of a YAML document to the map.
func (c *ConfMap) LoadYAML(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// UnmarshalYAML satisfies the yaml.Unmarshaler interface.
func (c *ConfMap) UnmarshalYAML(doc *yaml.Node) error {
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return nil
	}
	if doc.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping of sections", ErrMalformed, doc.Line)
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		name, body := doc.Content[i], doc.Content[i+1]
		if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: line %d: section %q must be a mapping of options", ErrMalformed, body.Line, name.Value)
		}

		for j := 0; j+1 < len(body.Content); j += 2 {
			option, value := body.Content[j], body.Content[j+1]
			values, err := decodeValues(value)
			if err != nil {
				return fmt.Errorf("%w: line %d: option %q of section %q: %v", ErrMalformed, value.Line, option.Value, name.Value, err)
			}
			if _, err := c.Values(name.Value, option.Value); err == nil {
				c.log.WithFields(logrus.Fields{
					"section": name.Value,
					"option":  option.Value,
					"line":    option.Line,
				}).Warn("configuration option overridden")
			}
			c.Set(name.Value, option.Value, values...)
		}
	}
	return nil
}

func decodeValues(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, errors.New("sequence items must be scalars")
			}
			values = append(values, item.Value)
		}
		return values, nil
	default:
		return nil, errors.New("value must be a scalar or a sequence")
	}
}

// MarshalYAML satisfies the yaml.Marshaler interface. Options with a single
// value are written as scalars, others as flow sequences.
func (c *ConfMap) MarshalYAML() (interface{}, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	for section, opts := range c.sections.All() {
		body := &yaml.Node{Kind: yaml.MappingNode}

		for option, values := range opts.All() {
			body.Content = append(body.Content, scalar(option), encodeValues(values))
		}

		doc.Content = append(doc.Content, scalar(section), body)
	}
	return doc, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func encodeValues(values []string) *yaml.Node {
	if len(values) == 1 {
		return scalar(values[0])
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		seq.Content = append(seq.Content, scalar(v))
	}
	return seq
}
