// Package manifest describes a route tree as data: a JSON document for
// tooling and deploy pipelines, and a text outline for terminals.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/routepath"
	"github.com/vango-dev/consolenav/pkg/search"
)

// Version is the manifest format version.
const Version = 1

// Manifest is the serializable description of a route tree.
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Routes      []Entry   `json:"routes"`
}

// Entry describes one route.
type Entry struct {
	Path       string        `json:"path"`
	Parent     string        `json:"parent,omitempty"`
	Component  string        `json:"component,omitempty"`
	Depth      int           `json:"depth"`
	Index      bool          `json:"index,omitempty"`
	Params     []Param       `json:"params,omitempty"`
	Search     []SearchField `json:"search,omitempty"`
	Redirect   *Redirect     `json:"redirect,omitempty"`
	Breadcrumb bool          `json:"breadcrumb,omitempty"`
}

// Param is a path parameter of a route pattern.
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	CatchAll bool   `json:"catchAll,omitempty"`
}

// SearchField is one declared search parameter.
type SearchField struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Values    []string `json:"values,omitempty"`
	Encoding  string   `json:"encoding,omitempty"`
	Optional  bool     `json:"optional,omitempty"`
	Default   any      `json:"default,omitempty"`
	OnInvalid string   `json:"onInvalid,omitempty"`
}

// Redirect is a route's redirect rule. Dynamic rules have no static target.
type Redirect struct {
	To             string `json:"to,omitempty"`
	PreserveSearch bool   `json:"preserveSearch,omitempty"`
	Dynamic        bool   `json:"dynamic,omitempty"`
}

// Build describes tree, parents before children.
func Build(tree *router.Tree) *Manifest {
	m := &Manifest{
		Version:     Version,
		GeneratedAt: time.Now().UTC(),
		Routes:      make([]Entry, 0, tree.Len()),
	}
	tree.Walk(func(n *router.Node) bool {
		m.Routes = append(m.Routes, entry(n))
		return true
	})
	return m
}

func entry(n *router.Node) Entry {
	r := n.Route()
	e := Entry{
		Path:       n.Path(),
		Parent:     r.Parent,
		Component:  r.Component,
		Depth:      n.Depth(),
		Index:      n.IsIndex(),
		Breadcrumb: r.Breadcrumb != nil,
	}

	for _, seg := range n.Pattern().Segments {
		switch seg.Kind {
		case routepath.SegmentParam:
			e.Params = append(e.Params, Param{Name: seg.Name, Type: seg.Type})
		case routepath.SegmentCatchAll:
			e.Params = append(e.Params, Param{Name: seg.Name, Type: seg.Type, CatchAll: true})
		}
	}

	for _, f := range r.Search.Fields() {
		sf := SearchField{
			Name:     f.Name,
			Kind:     f.Kind.String(),
			Values:   f.Values,
			Optional: f.IsOptional,
			Default:  f.DefaultValue,
		}
		if f.Kind == search.KindStrings {
			sf.Encoding = f.Encoding.String()
		}
		if f.OnInvalid != search.PolicyReject {
			sf.OnInvalid = f.OnInvalid.String()
		}
		e.Search = append(e.Search, sf)
	}

	if rd := r.Redirect; rd != nil {
		e.Redirect = &Redirect{
			To:             rd.To,
			PreserveSearch: rd.PreserveSearch,
			Dynamic:        rd.Func != nil,
		}
		if rd.Func != nil {
			e.Redirect.To = ""
		}
	}
	return e
}

// Encode renders the manifest as indented JSON.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Write writes the JSON manifest to w.
func (m *Manifest) Write(w io.Writer) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteFile writes the JSON manifest to path, creating parent directories.
func (m *Manifest) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	return f.Close()
}

// Read decodes a JSON manifest.
func Read(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}
