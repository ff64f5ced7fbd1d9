package mailservice

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

//go:embed templates/*
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown mail template")

// mailBlocks are the blocks every mail template must define.
var mailBlocks = []string{"subject", "plainBody", "htmlBody"}

// NewTemplate parses every embedded mail template once. Each file is kept in
// its own set since all of them define the same block names.
func NewTemplate() (*Template, error) {
	files, err := fs.Glob(templateFS, "templates/*")
	if err != nil {
		return nil, err
	}

	sets := make(map[string]*template.Template, len(files))

	for _, file := range files {
		t, err := template.New(path.Base(file)).ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("could not parse template %s: %w", file, err)
		}

		for _, block := range mailBlocks {
			if t.Lookup(block) == nil {
				return nil, fmt.Errorf("template %s does not define %q", file, block)
			}
		}

		sets[path.Base(file)] = t
	}

	return &Template{sets: sets}, nil
}

// ParseTemplate renders the subject, plain text and HTML bodies of the named
// template with data.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	t, ok := tp.sets[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	out := make([]*bytes.Buffer, len(mailBlocks))

	for i, block := range mailBlocks {
		out[i] = new(bytes.Buffer)
		if err := t.ExecuteTemplate(out[i], block, data); err != nil {
			return nil, nil, nil, fmt.Errorf("could not render %s of %s: %w", block, name, err)
		}
	}

	return out[0], out[1], out[2], nil
}
