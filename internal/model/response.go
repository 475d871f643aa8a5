package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Response is one HTTP response recorded while crawling.
type Response struct {
	// URL is the requested URL.
	URL string `yaml:"url" json:"url"`

	// Method is the HTTP request method.
	Method string `yaml:"method" json:"method"`

	// StatusCode is the HTTP response status.
	StatusCode int `yaml:"status,omitempty" json:"status,omitempty"`

	// ContentType is the media type from the Content-Type header, without
	// parameters. Empty when the server did not send one.
	ContentType string `yaml:"content_type,omitempty" json:"content_type,omitempty"`

	// Params are the request parameters, in submission order.
	Params Params `yaml:"params,omitempty" json:"params,omitempty"`
}

// Param is one request parameter.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of request parameters. In snapshot files it is
// written as a mapping; decoding keeps the mapping's order.
type Params []Param

// Get returns the value of the first parameter called name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// UnmarshalYAML decodes a mapping of parameter names to scalar values.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*p = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}

	params := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of param %q must be a scalar", v.Line, k.Value)
		}
		value := v.Value
		if v.ShortTag() == "!!null" {
			value = ""
		}
		params = append(params, Param{Name: k.Value, Value: value})
	}
	*p = params
	return nil
}

// MarshalYAML encodes the params as an ordered mapping.
func (p Params) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, param := range p {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: param.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: param.Value},
		)
	}
	return n, nil
}
