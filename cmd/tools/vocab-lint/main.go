// cmd/tools/vocab-lint/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"marketplace-search/internal/search/service"
	"marketplace-search/internal/search/vocabulary"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns 0 when the vocabulary loads (and, with -strict, has no lint
// findings), 1 on findings and 2 on load or usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vocab-lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Vocabulary YAML to check (empty checks the built-in tables)")
	strict := fs.Bool("strict", false, "Exit non-zero when lint finds problems")
	dump := fs.Bool("dump-default", false, "Print the built-in vocabulary as YAML and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *dump {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(vocabulary.Default()); err != nil {
			fmt.Fprintf(stderr, "Error encoding default vocabulary: %v\n", err)
			return 2
		}
		return 0
	}

	v, err := vocabulary.LoadFile(*file)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if _, err := service.NewToolkit(v, 0); err != nil {
		fmt.Fprintf(stderr, "Vocabulary rejected: %v\n", err)
		return 2
	}

	name := *file
	if name == "" {
		name = "built-in"
	}
	fmt.Fprintf(stdout, "Vocabulary %s (version %q)\n", name, v.Version)
	fmt.Fprintf(stdout, "  russian_keywords: %d\n", len(v.RussianKeywords))
	fmt.Fprintf(stdout, "  cyrillic_latin:   %d\n", len(v.CyrillicLatin))
	fmt.Fprintf(stdout, "  synonym_groups:   %d categories\n", len(v.SynonymGroups))
	fmt.Fprintf(stdout, "  brand_aliases:    %d\n", len(v.BrandAliases))
	fmt.Fprintf(stdout, "  typo_vocabulary:  %d\n", len(v.TypoVocabulary))

	problems := v.Lint()
	if len(problems) == 0 {
		fmt.Fprintln(stdout, "No problems found.")
		return 0
	}

	fmt.Fprintf(stdout, "Found %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(stdout, "  - %s\n", p)
	}
	if *strict {
		return 1
	}
	return 0
}
