package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-yaml"
)

// Funcs lists the functions callable from formulas.
type Funcs struct {
	Group  []string `help:"Only list functions of these groups" name:"group"  short:"g" sep:","`
	Output string   `help:"Listing format"                      name:"output" short:"o" default:"native" enum:"native,json,yaml"`
}

type funcInfo struct {
	Name      string `json:"name"      yaml:"name"`
	Group     string `json:"group"     yaml:"group"`
	Signature string `json:"signature" yaml:"signature"`
	Arity     int    `json:"arity"     yaml:"arity"`
	Doc       string `json:"doc"       yaml:"doc"`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	eng, err := engineFrom(ctx)
	if err != nil {
		return err
	}

	reg := eng.Registry()

	var infos []funcInfo

	for _, name := range reg.Names() {
		fn, _ := reg.Resolve(name)
		group := reg.Group(name)

		if len(f.Group) > 0 && !slices.Contains(f.Group, group) {
			continue
		}

		infos = append(infos, funcInfo{
			Name:      name,
			Group:     group,
			Signature: fn.Signature(),
			Arity:     fn.Arity,
			Doc:       fn.Doc,
		})
	}

	stdout, _ := outputs(ctx)

	switch f.Output {
	case "json":
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(stdout, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, infos)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = stdout.Write(data)

		return err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("SIGNATURE", "GROUP", "DESCRIPTION")

	for _, info := range infos {
		t.Row(info.Signature, info.Group, info.Doc)
	}

	_, err = fmt.Fprintln(stdout, t.Render())

	return err
}
