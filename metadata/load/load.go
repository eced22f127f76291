// Package load reads entity metadata documents and builds the metadata
// graph from them.
package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxext/metadata"
)

// Document is the on-disk form of a set of entities. JSON documents are
// accepted too, JSON being a subset of YAML.
type Document struct {
	Entities []*Entity `yaml:"entities" json:"entities"`
}

// Entity represents a metadata.Entity loaded from a document.
type Entity struct {
	Name       string      `yaml:"name" json:"name"`
	Store      string      `yaml:"store,omitempty" json:"store,omitempty"`
	Table      string      `yaml:"table,omitempty" json:"table,omitempty"`
	Parent     string      `yaml:"parent,omitempty" json:"parent,omitempty"`
	ID         string      `yaml:"id,omitempty" json:"id,omitempty"`
	Properties []*Property `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Property represents a metadata.Property loaded from a document.
type Property struct {
	Name        string `yaml:"name" json:"name"`
	Cardinality string `yaml:"cardinality,omitempty" json:"cardinality,omitempty"`
	Target      string `yaml:"target,omitempty" json:"target,omitempty"`
	Nullable    bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Column      string `yaml:"column,omitempty" json:"column,omitempty"`
	DeletedDate bool   `yaml:"deleted_date,omitempty" json:"deleted_date,omitempty"`
	ReferenceID string `yaml:"reference_id,omitempty" json:"reference_id,omitempty"`
}

// Parse decodes a single document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("load: decode metadata: %w", err)
	}
	return doc, nil
}

// Convert turns the document into metadata entities ready for
// metadata.New.
func (d *Document) Convert() ([]*metadata.Entity, error) {
	entities := make([]*metadata.Entity, 0, len(d.Entities))
	for _, e := range d.Entities {
		if e == nil {
			continue
		}
		me := &metadata.Entity{
			Name:   e.Name,
			Store:  e.Store,
			Table:  e.Table,
			Parent: e.Parent,
			ID:     e.ID,
		}
		for _, p := range e.Properties {
			if p == nil {
				continue
			}
			card, err := metadata.ParseCardinality(p.Cardinality)
			if err != nil {
				return nil, metadata.NewSchemaError(e.Name, p.Name, err.Error())
			}
			me.Declared = append(me.Declared, &metadata.Property{
				Name:        p.Name,
				Cardinality: card,
				Target:      p.Target,
				Nullable:    p.Nullable,
				Column:      p.Column,
				DeletedDate: p.DeletedDate,
				ReferenceID: p.ReferenceID,
			})
		}
		entities = append(entities, me)
	}
	return entities, nil
}

// Graph converts the document and builds the metadata graph.
func (d *Document) Graph() (*metadata.Graph, error) {
	entities, err := d.Convert()
	if err != nil {
		return nil, err
	}
	return metadata.New(entities...)
}

// ReadFiles reads and parses the given files concurrently and merges them
// into one document, preserving argument order.
func ReadFiles(ctx context.Context, paths ...string) (*Document, error) {
	docs := make([]*Document, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load: read %s: %w", path, err)
			}
			doc, err := Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	merged := &Document{}
	for _, doc := range docs {
		merged.Entities = append(merged.Entities, doc.Entities...)
	}
	return merged, nil
}

// Load reads the given files and builds the metadata graph.
func Load(ctx context.Context, paths ...string) (*metadata.Graph, error) {
	if len(paths) == 0 {
		return nil, errors.New("load: no metadata files given")
	}
	doc, err := ReadFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return doc.Graph()
}
