// Package openapi derives generator-shaped URL templates from the OpenAPI
// document a client was generated from, so stubs can be registered straight
// off the API description.
package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/getstubd/stubd/internal/uritemplate"
)

// LoadDocument loads and parses an OpenAPI 3 document from a file.
func LoadDocument(path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return doc, nil
}

// TemplateForOperation builds the URL template a generator would emit for
// one operation: the base-URL marker, the path with its {name} parameters
// kept verbatim, and a trailing query-parameter template listing the
// operation's query parameters in declaration order (path-item parameters
// first).
//
//	TemplateForOperation(doc, "GET", "/users/{userId}")
//	  -> "{+baseurl}/users/{userId}{?select,expand}"
func TemplateForOperation(doc *openapi3.T, method, path string) (string, error) {
	if doc == nil || doc.Paths == nil {
		return "", fmt.Errorf("openapi document has no paths")
	}
	item := doc.Paths.Find(path)
	if item == nil {
		return "", fmt.Errorf("path %q not found in document", path)
	}
	op := item.GetOperation(strings.ToUpper(method))
	if op == nil {
		return "", fmt.Errorf("path %q has no %s operation", path, strings.ToUpper(method))
	}

	template := uritemplate.BaseURLParameter + path
	if query := queryNames(item.Parameters, op.Parameters); len(query) > 0 {
		template += "{?" + strings.Join(query, ",") + "}"
	}
	return template, nil
}

// TemplatesFromDoc derives a template for every operation in the document,
// keyed "METHOD /path".
func TemplatesFromDoc(doc *openapi3.T) (map[string]string, error) {
	if doc == nil || doc.Paths == nil {
		return nil, fmt.Errorf("openapi document has no paths")
	}
	out := make(map[string]string)
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			template, err := TemplateForOperation(doc, method, path)
			if err != nil {
				return nil, err
			}
			out[strings.ToUpper(method)+" "+path] = template
		}
	}
	return out, nil
}

// OperationKeys returns the sorted "METHOD /path" keys of a document, for
// stable iteration in tests and tooling.
func OperationKeys(doc *openapi3.T) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var keys []string
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			keys = append(keys, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(keys)
	return keys
}

// queryNames collects query-parameter names in declaration order,
// path-item-level parameters before operation-level ones, duplicates
// dropped.
func queryNames(groups ...openapi3.Parameters) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, params := range groups {
		for _, ref := range params {
			if ref == nil || ref.Value == nil || ref.Value.In != openapi3.ParameterInQuery {
				continue
			}
			if _, ok := seen[ref.Value.Name]; ok {
				continue
			}
			seen[ref.Value.Name] = struct{}{}
			names = append(names, ref.Value.Name)
		}
	}
	return names
}
