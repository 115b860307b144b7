// Package frontmatter encodes and decodes the YAML metadata block that
// prefixes every stored post file.
package frontmatter

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Meta is the structured metadata carried in a post file's front matter.
// Field order here is the order written to disk.
type Meta struct {
	Title    string    `yaml:"title"`
	Date     time.Time `yaml:"date"`
	Draft    bool      `yaml:"draft"`
	Slug     string    `yaml:"slug"`
	Excerpt  string    `yaml:"excerpt,omitempty"`
	Category string    `yaml:"category,omitempty"`
	Tags     []string  `yaml:"tags,omitempty"`
	Author   string    `yaml:"author,omitempty"`
}

// Encode renders meta and body as a markdown file with a leading YAML
// front matter block. The body is written verbatim so that
// Parse(Encode(m, body)) returns body byte for byte.
func Encode(meta Meta, body string) ([]byte, error) {
	yml, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(delim + "\n")
	b.Write(yml)
	b.WriteString(delim + "\n\n")
	b.WriteString(body)
	return b.Bytes(), nil
}

// Parse splits raw file content into metadata and markdown body.
// A missing or malformed front matter block is an error: every file the
// post store owns is written through Encode.
func Parse(data []byte) (Meta, string, error) {
	var meta Meta

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return meta, "", fmt.Errorf("frontmatter: missing opening delimiter")
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return meta, "", fmt.Errorf("frontmatter: missing closing delimiter")
	}

	yamlBlock := rest[:idx]
	if err := yaml.Unmarshal(yamlBlock, &meta); err != nil {
		return meta, "", fmt.Errorf("frontmatter: unmarshal: %w", err)
	}

	// Consume the end of the closing delimiter line plus the single blank
	// separator line Encode writes. Anything past that is body content,
	// including leading newlines the caller supplied.
	body := rest[idx+1+len(delim):]
	for i := 0; i < 2; i++ {
		body = bytes.TrimPrefix(body, []byte("\r"))
		if len(body) == 0 || body[0] != '\n' {
			break
		}
		body = body[1:]
	}
	return meta, string(body), nil
}
