package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// CompleteFilesByExtension completes paths to directories and to files with
// one of the given extensions. With includeRotated, numbered rotations such
// as app.trace.1 match too.
func CompleteFilesByExtension(extensions []string, includeRotated bool) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	rotated := make([]*regexp.Regexp, 0, len(extensions))
	if includeRotated {
		for _, ext := range extensions {
			rotated = append(rotated, regexp.MustCompile(regexp.QuoteMeta(ext)+`\.\d+$`))
		}
	}

	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		dir, prefix := ".", toComplete
		if strings.Contains(toComplete, "/") {
			dir, prefix = filepath.Dir(toComplete), filepath.Base(toComplete)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var suggestions []string
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
				continue
			}

			suggestion := name
			if dir != "." {
				suggestion = filepath.Join(dir, name)
			}

			switch {
			case entry.IsDir():
				suggestions = append(suggestions, suggestion+"/")
			case hasExtension(name, extensions, rotated):
				suggestions = append(suggestions, suggestion)
			}
		}

		slices.Sort(suggestions)
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}

func hasExtension(filename string, extensions []string, rotated []*regexp.Regexp) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	for _, re := range rotated {
		if re.MatchString(filename) {
			return true
		}
	}
	return false
}
