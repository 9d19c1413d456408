package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vytor/quizdrill/internal/models"
)

// record is one question as written in the bank file.
type record struct {
	ID          recordID      `json:"id" yaml:"id"`
	Question    string        `json:"question" yaml:"question"`
	Type        string        `json:"type" yaml:"type"`
	Options     optionList    `json:"options" yaml:"options"`
	Answer      []string      `json:"answer" yaml:"answer"`
	Explanation string        `json:"explanation" yaml:"explanation"`
	Table       *models.Table `json:"table" yaml:"table"`
}

// recordID accepts integer or string ids.
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

func (id *recordID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	*id = recordID(node.Value)
	return nil
}

// optionList is a key -> text mapping that keeps the order of the file.
type optionList []models.Option

func (l *optionList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options must be an object")
	}
	var out optionList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("options key must be a string")
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("options[%s]: %w", key, err)
		}
		out = append(out, models.Option{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

func (l *optionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: options must be a mapping", node.Line)
	}
	out := make(optionList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var text string
		if err := node.Content[i+1].Decode(&text); err != nil {
			return fmt.Errorf("line %d: options[%s]: %w", node.Content[i+1].Line, node.Content[i].Value, err)
		}
		out = append(out, models.Option{Key: node.Content[i].Value, Text: text})
	}
	*l = out
	return nil
}

func parseRecords(data []byte, ext string) ([]record, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return parseYAMLRecords(data)
	default:
		return parseJSONRecords(data)
	}
}

func parseJSONRecords(data []byte) ([]record, error) {
	var records []record
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return records, nil
}

func parseYAMLRecords(data []byte) ([]record, error) {
	var records []record
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&records); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return records, nil
}
