// Package describe generates task descriptions. A remote description
// service is used when configured; otherwise embedded templates fill in.
// Description generation is best effort and never fails an operation, so
// the port returns a string with no error.
package describe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/todochain/internal/ports/secondary"
)

//go:embed templates.yaml
var templatesYAML []byte

type templates struct {
	Categories map[string][]string `yaml:"categories"`
	Priorities map[string]string   `yaml:"priorities"`
}

// Provider implements secondary.DescriptionProvider. With a service URL it
// asks the remote generator first and falls back to templates on any
// failure; without one it goes straight to templates.
type Provider struct {
	serviceURL string
	httpClient *http.Client
	tpl        templates
}

// NewProvider creates a description provider. serviceURL may be empty.
// When overridePath names a readable yaml file, its categories and priority
// suffixes replace the embedded ones key by key.
func NewProvider(serviceURL, overridePath string) (*Provider, error) {
	var tpl templates
	if err := yaml.Unmarshal(templatesYAML, &tpl); err != nil {
		return nil, err
	}
	if overridePath != "" {
		if data, err := os.ReadFile(overridePath); err == nil {
			var over templates
			if err := yaml.Unmarshal(data, &over); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", overridePath, err)
			}
			for category, pool := range over.Categories {
				tpl.Categories[category] = pool
			}
			for priority, suffix := range over.Priorities {
				tpl.Priorities[priority] = suffix
			}
		}
	}
	return &Provider{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tpl:        tpl,
	}, nil
}

// Describe produces a description for a task.
func (p *Provider) Describe(ctx context.Context, title, category, priority string) string {
	if p.serviceURL != "" {
		if desc := p.fromService(ctx, title, category, priority); desc != "" {
			return desc
		}
	}
	return p.fromTemplate(title, category, priority)
}

func (p *Provider) fromService(ctx context.Context, title, category, priority string) string {
	payload, err := json.Marshal(map[string]string{
		"title":    title,
		"category": category,
		"priority": priority,
	})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serviceURL+"/v1/describe", bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var out struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ""
	}
	return strings.TrimSpace(out.Description)
}

// fromTemplate picks a template deterministically so repeated calls for
// the same task produce the same text.
func (p *Provider) fromTemplate(title, category, priority string) string {
	pool, ok := p.tpl.Categories[category]
	if !ok || len(pool) == 0 {
		pool = p.tpl.Categories["General"]
	}
	if len(pool) == 0 {
		return title
	}

	h := fnv.New32a()
	h.Write([]byte(title))
	text := strings.ReplaceAll(pool[int(h.Sum32())%len(pool)], "{title}", title)

	if suffix, ok := p.tpl.Priorities[priority]; ok {
		text += " " + suffix
	}
	return text
}

var _ secondary.DescriptionProvider = (*Provider)(nil)
