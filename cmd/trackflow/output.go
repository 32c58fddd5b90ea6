package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/trackflow-app/trackflow/internal/onboarding"
)

type printer struct {
	out io.Writer
	err io.Writer
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, err: errOut}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// failure prints err with one line per invalid field.
func (p *printer) failure(err error) {
	var oe *onboarding.Error
	if !errors.As(err, &oe) {
		fmt.Fprintf(p.err, "error: %v\n", err)
		return
	}

	fmt.Fprintln(p.err, oe.Error())
	fields := make([]string, 0, len(oe.Fields))
	for f := range oe.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(p.err, "  %s: %s\n", f, oe.Fields[f])
	}
}
