// Command ordered exposes the ordered containers of this module on the command
// line: sorting and deduplicating lines, printing the environment, and merging
// configuration files.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/segmentio/avl/compare"
	"github.com/segmentio/avl/confmap"
	"github.com/segmentio/avl/container/tree"
	"github.com/segmentio/avl/envtable"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose, trace bool

	root := &cobra.Command{
		Use:          "ordered",
		Short:        "Ordered dictionary tools",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetOutput(cmd.ErrOrStderr())
			switch {
			case trace:
				logrus.SetLevel(logrus.TraceLevel)
			case verbose:
				logrus.SetLevel(logrus.DebugLevel)
			default:
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log skipped input")
	root.PersistentFlags().BoolVar(&trace, "trace", false, "trace tree operations")

	root.AddCommand(newSortCommand(), newEnvCommand(), newConfCommand())
	return root
}

func newSortCommand() *cobra.Command {
	var fold, reverse, count bool

	cmd := &cobra.Command{
		Use:   "sort [file...]",
		Short: "Sort lines and remove duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := compare.Strings
			if fold {
				keys = compare.Fold
			}
			lines := tree.NewMap[string, int](keys)
			if logrus.IsLevelEnabled(logrus.TraceLevel) {
				lines.SetLogger(logrus.StandardLogger())
			}

			if len(args) == 0 {
				if err := countLines(lines, cmd.InOrStdin()); err != nil {
					return err
				}
			}
			for _, name := range args {
				if err := countFile(lines, name); err != nil {
					return err
				}
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			write := func(line string, n int) bool {
				if count {
					fmt.Fprintf(w, "%7d %s\n", n, line)
				} else {
					fmt.Fprintln(w, line)
				}
				return true
			}
			if reverse {
				lines.RangeReverse(write)
			} else {
				lines.Range(write)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&fold, "ignore-case", "i", false, "treat lines differing only by case as duplicates")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "print lines in descending order")
	cmd.Flags().BoolVarP(&count, "count", "c", false, "prefix lines with their number of occurrences")
	return cmd
}

func countFile(lines *tree.Map[string, int], name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return countLines(lines, f)
}

// countLines counts the occurrences of each line read from r. Lines that are
// equivalent under the ordering of the map are counted together, under the
// spelling of the first one.
func countLines(lines *tree.Map[string, int], r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 1<<20)
	for s.Scan() {
		line := s.Text()
		n, _ := lines.Lookup(line)
		lines.Insert(line, n+1)
	}
	return s.Err()
}

func newEnvCommand() *cobra.Command {
	var fold bool
	var unset []string

	cmd := &cobra.Command{
		Use:   "env [NAME=value...]",
		Short: "Print the environment in sorted order",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envtable.FromEnviron(fold)
			for _, name := range unset {
				env.Unset(name)
			}
			env.Load(args)

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, kv := range env.Environ() {
				fmt.Fprintln(w, kv)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&fold, "ignore-case", "i", false, "match variable names regardless of case")
	cmd.Flags().StringSliceVarP(&unset, "unset", "u", nil, "remove variables from the environment")
	return cmd
}

func newConfCommand() *cobra.Command {
	var fold bool
	var files []string

	cmd := &cobra.Command{
		Use:   "conf [Section.Option=value...]",
		Short: "Merge configuration files and overrides, and print the result as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := confmap.New(fold)

			for _, name := range files {
				data, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				if err := conf.LoadYAML(data); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			if err := conf.UpdateFromStrings(args); err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(conf); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVarP(&fold, "ignore-case", "i", false, "match section and option names regardless of case")
	cmd.Flags().StringArrayVarP(&files, "yaml", "f", nil, "YAML configuration file to load, may be repeated")
	return cmd
}
