package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

//go:generate mockgen -destination=./mocks/registry.go -package=mocks . Client,Getter

// DefaultURLTemplate points at the public registry. "{name}" is replaced by
// the tool name.
const DefaultURLTemplate = "https://raw.githubusercontent.com/konni332/frate-registry/refs/heads/master/tools/{name}.json"

// NamePlaceholder is substituted in registry URL templates.
const NamePlaceholder = "{name}"

// Client fetches tool documents.
type Client interface {
	FetchTool(ctx context.Context, name string) (*Tool, error)
}

// Getter performs a GET and returns the body; download.Manager satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient fetches tool documents over HTTP. Documents are never cached.
type HTTPClient struct {
	urlTemplate string
	getter      Getter
}

// NewHTTPClient creates a registry client. An empty template selects
// DefaultURLTemplate.
func NewHTTPClient(urlTemplate string, getter Getter) *HTTPClient {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &HTTPClient{urlTemplate: urlTemplate, getter: getter}
}

// ToolURL returns the document URL for a tool.
func (c *HTTPClient) ToolURL(name string) string {
	return strings.ReplaceAll(c.urlTemplate, NamePlaceholder, url.PathEscape(name))
}

// FetchTool downloads and decodes the document for name. Transport errors,
// non-2xx responses and malformed JSON are all reported as ErrNotFound.
func (c *HTTPClient) FetchTool(ctx context.Context, name string) (*Tool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.ErrNotFoundWithName(name, fmt.Errorf("empty tool name"))
	}
	toolURL := c.ToolURL(name)

	data, err := c.getter.Get(ctx, toolURL)
	if err != nil {
		return nil, pkgerrors.ErrNotFoundWithName(name, err)
	}

	var tool Tool
	if err := json.Unmarshal(data, &tool); err != nil {
		return nil, pkgerrors.ErrNotFoundWithName(name, fmt.Errorf("decoding %s: %v", toolURL, err))
	}
	if tool.Releases == nil {
		tool.Releases = map[string]ReleaseInfo{}
	}
	return &tool, nil
}
