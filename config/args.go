package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Args are the per-invocation parameters of the cleaning step.
type Args struct {
	InputArtifact     string
	OutputArtifact    string
	OutputType        string
	OutputDescription string
	MinPrice          float64
	MaxPrice          float64
}

var requiredFlags = []string{
	"input_artifact",
	"output_artifact",
	"output_type",
	"output_description",
	"min_price",
	"max_price",
}

// ParseArgs parses the command line. Every flag is required; there are no
// defaults. Usage text goes to usageOut.
func ParseArgs(argv []string, usageOut io.Writer) (*Args, error) {
	a := &Args{}
	fs := flag.NewFlagSet("basic_cleaning", flag.ContinueOnError)
	fs.SetOutput(usageOut)

	fs.StringVar(&a.InputArtifact, "input_artifact", "", "Input artifact from previous component (e.g. raw data)")
	fs.StringVar(&a.OutputArtifact, "output_artifact", "", "Output artifact of current component")
	fs.StringVar(&a.OutputType, "output_type", "", "Type of output artifact from component")
	fs.StringVar(&a.OutputDescription, "output_description", "", "A description of the output artifact")
	fs.Float64Var(&a.MinPrice, "min_price", 0, "Minimum price for price column of dataframe")
	fs.Float64Var(&a.MaxPrice, "max_price", 0, "Maximum price for price column of dataframe")

	if err := fs.Parse(argv); err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("args: unexpected positional arguments: %s", strings.Join(fs.Args(), " "))
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var missing []string
	for _, name := range requiredFlags {
		if !set[name] {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("args: the following arguments are required: %s", strings.Join(missing, ", "))
	}
	return a, nil
}

// ConfigMap returns the arguments as recorded run configuration.
func (a *Args) ConfigMap() map[string]any {
	return map[string]any{
		"input_artifact":     a.InputArtifact,
		"output_artifact":    a.OutputArtifact,
		"output_type":        a.OutputType,
		"output_description": a.OutputDescription,
		"min_price":          a.MinPrice,
		"max_price":          a.MaxPrice,
	}
}
