package msgcat

import (
    _ "embed"
    "fmt"
    "maps"
    "os"
    "path/filepath"
    "slices"
    "strings"
    "sync"
    "text/template"

    yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultMessages []byte

// Catalog holds the player-facing strings: status lines, notices, player labels.
// The embedded English set is always loaded; yaml files in an override
// directory replace individual keys. Templates are parsed once at load time.
type Catalog struct {
    mu        sync.RWMutex
    templates map[string]*template.Template
}

// New loads the embedded messages, then every *.yaml / *.yml in overrideDir (if set).
func New(overrideDir string) (*Catalog, error) {
    c := &Catalog{templates: map[string]*template.Template{}}

    base, err := flattenYAML(defaultMessages)
    if err != nil {
        return nil, fmt.Errorf("embedded messages: %w", err)
    }
    if err := c.merge(base); err != nil {
        return nil, fmt.Errorf("embedded messages: %w", err)
    }

    if dir := strings.TrimSpace(overrideDir); dir != "" {
        layer, err := readOverrides(dir)
        if err != nil {
            return nil, err
        }
        if err := c.merge(layer); err != nil {
            return nil, err
        }
    }
    return c, nil
}

// readOverrides collects all override files into one layer. A key defined in
// two files is an error; file order must not decide which text wins.
func readOverrides(dir string) (map[string]string, error) {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return nil, fmt.Errorf("read message dir: %w", err)
    }
    layer := map[string]string{}
    owner := map[string]string{}
    for _, e := range entries {
        name := e.Name()
        if e.IsDir() || !isYAML(name) {
            continue
        }
        raw, err := os.ReadFile(filepath.Join(dir, name))
        if err != nil {
            return nil, fmt.Errorf("read %s: %w", name, err)
        }
        flat, err := flattenYAML(raw)
        if err != nil {
            return nil, fmt.Errorf("parse %s: %w", name, err)
        }
        for _, k := range slices.Sorted(maps.Keys(flat)) {
            if prev, dup := owner[k]; dup {
                return nil, fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
            }
            owner[k] = name
            layer[k] = flat[k]
        }
    }
    return layer, nil
}

func isYAML(name string) bool {
    switch strings.ToLower(filepath.Ext(name)) {
    case ".yaml", ".yml":
        return true
    }
    return false
}

func (c *Catalog) merge(texts map[string]string) error {
    parsed := make(map[string]*template.Template, len(texts))
    for k, text := range texts {
        tpl, err := template.New(k).Option("missingkey=error").Parse(text)
        if err != nil {
            return fmt.Errorf("template %s: %w", k, err)
        }
        parsed[k] = tpl
    }
    c.mu.Lock()
    maps.Copy(c.templates, parsed)
    c.mu.Unlock()
    return nil
}

// flattenYAML turns nested mappings into dot keys ("status.turn"). Only string
// leaves are accepted.
func flattenYAML(raw []byte) (map[string]string, error) {
    var doc yaml.Node
    if err := yaml.Unmarshal(raw, &doc); err != nil {
        return nil, err
    }
    out := map[string]string{}
    if len(doc.Content) == 0 {
        return out, nil
    }
    return out, walkNode(doc.Content[0], "", out)
}

func walkNode(n *yaml.Node, prefix string, out map[string]string) error {
    switch n.Kind {
    case yaml.MappingNode:
        for i := 0; i+1 < len(n.Content); i += 2 {
            key := n.Content[i].Value
            if prefix != "" {
                key = prefix + "." + key
            }
            if err := walkNode(n.Content[i+1], key, out); err != nil {
                return err
            }
        }
        return nil
    case yaml.ScalarNode:
        if prefix == "" {
            return fmt.Errorf("line %d: value without a key", n.Line)
        }
        if n.Tag == "!!null" {
            return nil
        }
        if n.Tag != "!!str" {
            return fmt.Errorf("line %d: %s must be a string, got %s", n.Line, prefix, n.Tag)
        }
        out[prefix] = n.Value
        return nil
    case yaml.AliasNode:
        return walkNode(n.Alias, prefix, out)
    default:
        return fmt.Errorf("line %d: unsupported yaml node at %q", n.Line, prefix)
    }
}

// Render executes the template stored under key. Unknown keys and missing
// data fields are errors.
func (c *Catalog) Render(key string, data any) (string, error) {
    key = strings.TrimSpace(key)
    c.mu.RLock()
    tpl, ok := c.templates[key]
    c.mu.RUnlock()
    if !ok {
        return "", fmt.Errorf("template not found: %s", key)
    }
    var b strings.Builder
    if err := tpl.Execute(&b, data); err != nil {
        return "", err
    }
    if strings.TrimSpace(b.String()) == "" {
        return "", fmt.Errorf("template %s rendered empty", key)
    }
    return b.String(), nil
}

// Text is Render with a fallback. A nil catalog always returns fallback.
func (c *Catalog) Text(key string, data any, fallback string) string {
    if c == nil {
        return fallback
    }
    out, err := c.Render(key, data)
    if err != nil {
        return fallback
    }
    return out
}

// Keys lists the loaded keys in sorted order.
func (c *Catalog) Keys() []string {
    c.mu.RLock()
    defer c.mu.RUnlock()
    return slices.Sorted(maps.Keys(c.templates))
}
