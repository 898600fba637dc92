// Package apispec loads Swagger 2.0 and OpenAPI 3.x documents from disk and
// reduces them to a small Document value.
//
// Parsing is delegated to third-party parsers: go-openapi/loads for Swagger
// 2.0 and kin-openapi for OpenAPI 3.x. This package reads the file once, looks
// at the top-level "swagger" or "openapi" key to pick a parser, hands it the
// bytes as JSON and flattens the result. Both JSON and YAML are accepted.
//
// An unquoted version such as `swagger: 2.0` or `version: 1.0` under info is
// a YAML number. It is kept as the literal text that was written, so it reads
// back as "2.0" rather than 2.
//
// Usage:
//
//	doc, err := apispec.Load(ctx, "api/petstore.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(doc)
package apispec

import (
	"context"
	"errors"
	"fmt"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/loads"
	"github.com/go-openapi/spec"
	"github.com/go-openapi/swag"
	"gopkg.in/yaml.v3"
)

// Document formats.
const (
	FormatSwagger = "swagger"
	FormatOpenAPI = "openapi"
)

var (
	// ErrMissingPath is returned when Load is called without a file path.
	ErrMissingPath = errors.New("missing file path")

	// ErrMalformed is returned when the file is neither valid JSON nor YAML.
	ErrMalformed = errors.New("malformed specification document")

	// ErrUnsupportedFormat is returned when the document declares neither a
	// "swagger" nor an "openapi" version.
	ErrUnsupportedFormat = errors.New("unsupported specification format")
)

// Operation is one method on one path.
type Operation struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operation_id,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// Document is the parsed, format-independent view of a specification file.
type Document struct {
	Path        string
	Format      string // FormatSwagger or FormatOpenAPI
	SpecVersion string // "2.0", "3.0.3", ...
	Title       string
	Version     string
	Description string
	Servers     []string
	Operations  []Operation // sorted by path, then method
}

// Summary is the JSON projection of a Document returned over HTTP.
type Summary struct {
	Format         string      `json:"format"`
	SpecVersion    string      `json:"spec_version"`
	Title          string      `json:"title"`
	Version        string      `json:"version"`
	Servers        []string    `json:"servers,omitempty"`
	OperationCount int         `json:"operation_count"`
	Operations     []Operation `json:"operations"`
}

// Load parses the specification document at path.
//
// An empty path fails with ErrMissingPath before touching the filesystem.
// Read errors keep their os error in the chain, so errors.Is(err,
// fs.ErrNotExist) works for missing files.
func Load(ctx context.Context, path string) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: %w: top level is not an object", path, ErrMalformed)
	}

	format := formatOf(top)
	if format == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	textVersions(top)
	data, err := swag.YAMLToJSON(&root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if format == FormatSwagger {
		return loadSwagger(path, data)
	}
	return loadOpenAPI(ctx, path, data)
}

// formatOf reports which parser the top-level mapping m needs, or "" when it
// declares neither version. "swagger" wins when both are present.
func formatOf(m *yaml.Node) string {
	for _, f := range []string{FormatSwagger, FormatOpenAPI} {
		if v := field(m, f); v != nil && v.Kind == yaml.ScalarNode && v.Value != "" && v.ShortTag() != "!!null" {
			return f
		}
	}
	return ""
}

// textVersions retags numeric version scalars as strings in place, so the
// parsers see the literal text ("2.0", "1.10") instead of a number.
func textVersions(m *yaml.Node) {
	for _, v := range []*yaml.Node{field(m, FormatSwagger), field(m, FormatOpenAPI), field(field(m, "info"), "version")} {
		if v == nil || v.Kind != yaml.ScalarNode {
			continue
		}
		switch v.ShortTag() {
		case "!!int", "!!float":
			v.Tag = "!!str"
		}
	}
}

// field returns the value stored under key in mapping m, or nil.
func field(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func loadSwagger(path string, data json.RawMessage) (*Document, error) {
	ld, err := loads.Analyzed(data, "")
	if err != nil {
		return nil, fmt.Errorf("parse swagger %s: %w", path, err)
	}
	sw := ld.Spec()

	doc := &Document{
		Path:        path,
		Format:      FormatSwagger,
		SpecVersion: sw.Swagger,
	}
	if sw.Info != nil {
		doc.Title = sw.Info.Title
		doc.Version = sw.Info.Version
		doc.Description = sw.Info.Description
	}
	doc.Servers = swaggerServers(sw)

	if sw.Paths != nil {
		for p, item := range sw.Paths.Paths {
			for method, op := range swaggerOperations(item) {
				doc.Operations = append(doc.Operations, Operation{
					Method:      method,
					Path:        p,
					OperationID: op.ID,
					Summary:     op.Summary,
				})
			}
		}
	}
	sortOperations(doc.Operations)
	return doc, nil
}

// swaggerServers rebuilds base URLs from host, basePath and schemes.
func swaggerServers(sw *spec.Swagger) []string {
	if sw.Host == "" {
		if sw.BasePath != "" {
			return []string{sw.BasePath}
		}
		return nil
	}
	schemes := sw.Schemes
	if len(schemes) == 0 {
		schemes = []string{"http"}
	}
	out := make([]string, 0, len(schemes))
	for _, s := range schemes {
		out = append(out, s+"://"+sw.Host+sw.BasePath)
	}
	return out
}

func swaggerOperations(item spec.PathItem) map[string]*spec.Operation {
	ops := map[string]*spec.Operation{
		http.MethodGet:     item.Get,
		http.MethodPut:     item.Put,
		http.MethodPost:    item.Post,
		http.MethodDelete:  item.Delete,
		http.MethodOptions: item.Options,
		http.MethodHead:    item.Head,
		http.MethodPatch:   item.Patch,
	}
	for m, op := range ops {
		if op == nil {
			delete(ops, m)
		}
	}
	return ops
}

func loadOpenAPI(ctx context.Context, path string, data json.RawMessage) (*Document, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true

	// The location only anchors relative $refs; the root document is never
	// read from it.
	t, err := loader.LoadFromDataWithPath(data, &url.URL{Path: filepath.ToSlash(path)})
	if err != nil {
		return nil, fmt.Errorf("parse openapi %s: %w", path, err)
	}

	doc := &Document{
		Path:        path,
		Format:      FormatOpenAPI,
		SpecVersion: t.OpenAPI,
	}
	if t.Info != nil {
		doc.Title = t.Info.Title
		doc.Version = t.Info.Version
		doc.Description = t.Info.Description
	}
	for _, s := range t.Servers {
		if s != nil && s.URL != "" {
			doc.Servers = append(doc.Servers, s.URL)
		}
	}
	if t.Paths != nil {
		for p, item := range t.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				doc.Operations = append(doc.Operations, Operation{
					Method:      method,
					Path:        p,
					OperationID: op.OperationID,
					Summary:     op.Summary,
				})
			}
		}
	}
	sortOperations(doc.Operations)
	return doc, nil
}

func sortOperations(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
}

// Summary projects the document for JSON responses.
func (d *Document) Summary() Summary {
	ops := d.Operations
	if ops == nil {
		ops = []Operation{}
	}
	return Summary{
		Format:         d.Format,
		SpecVersion:    d.SpecVersion,
		Title:          d.Title,
		Version:        d.Version,
		Servers:        d.Servers,
		OperationCount: len(ops),
		Operations:     ops,
	}
}

// String renders the document as plain text. The first line always carries
// the format, spec version, title and API version.
func (d *Document) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %q version %s\n", d.Format, d.SpecVersion, d.Title, d.Version)
	fmt.Fprintf(&b, "source: %s\n", d.Path)
	if d.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", d.Description)
	}
	for _, s := range d.Servers {
		fmt.Fprintf(&b, "server: %s\n", s)
	}
	fmt.Fprintf(&b, "operations: %d\n", len(d.Operations))
	for _, op := range d.Operations {
		fmt.Fprintf(&b, "  %-7s %s", op.Method, op.Path)
		if op.OperationID != "" {
			fmt.Fprintf(&b, " (%s)", op.OperationID)
		}
		if op.Summary != "" {
			fmt.Fprintf(&b, " - %s", op.Summary)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
