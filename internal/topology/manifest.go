package topology

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the manifest inside a run's work directory.
const FileName = "docker-compose.yml"

// Service is one compose service. Field order matches the emitted YAML.
type Service struct {
	Image       string            `yaml:"image"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Expose      []string          `yaml:"expose,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
}

func (s Service) clone() Service {
	out := s
	out.Volumes = append([]string(nil), s.Volumes...)
	out.Expose = append([]string(nil), s.Expose...)
	out.DependsOn = append([]string(nil), s.DependsOn...)
	if s.Environment != nil {
		out.Environment = make(map[string]string, len(s.Environment))
		for k, v := range s.Environment {
			out.Environment[k] = v
		}
	}
	return out
}

type namedService struct {
	name    string
	service Service
}

// Manifest is an ordered, read-only set of compose services.
type Manifest struct {
	services []namedService
}

// Names returns the service names in declaration order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m.services))
	for _, s := range m.services {
		names = append(names, s.name)
	}
	return names
}

// Service returns a copy of the named service.
func (m Manifest) Service(name string) (Service, bool) {
	for _, s := range m.services {
		if s.name == name {
			return s.service.clone(), true
		}
	}
	return Service{}, false
}

func (m Manifest) with(name string, svc Service) Manifest {
	services := make([]namedService, len(m.services), len(m.services)+1)
	copy(services, m.services)
	return Manifest{services: append(services, namedService{name: name, service: svc.clone()})}
}

// Validate checks that every dependency names a declared service other than
// the dependent itself.
func (m Manifest) Validate() error {
	declared := make(map[string]bool, len(m.services))
	for _, s := range m.services {
		if declared[s.name] {
			return fmt.Errorf("service %q declared twice", s.name)
		}
		declared[s.name] = true
	}
	for _, s := range m.services {
		if s.service.Image == "" {
			return fmt.Errorf("service %q has no image", s.name)
		}
		for _, dep := range s.service.DependsOn {
			if dep == s.name {
				return fmt.Errorf("service %q depends on itself", s.name)
			}
			if !declared[dep] {
				return fmt.Errorf("service %q depends on undeclared service %q", s.name, dep)
			}
		}
	}
	return nil
}

// MarshalYAML emits the compose document with services in declaration order.
func (m Manifest) MarshalYAML() (interface{}, error) {
	services := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range m.services {
		value := &yaml.Node{}
		if err := value.Encode(s.service); err != nil {
			return nil, fmt.Errorf("encode service %s: %w", s.name, err)
		}
		services.Content = append(services.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: s.name},
			value,
		)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "services"},
			services,
		},
	}, nil
}

// Marshal renders the manifest as a compose YAML document.
func (m Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the manifest to dir/FileName and returns the file path.
// dir must exist.
func WriteFile(dir string, m Manifest) (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("invalid topology: %w", err)
	}
	data, err := m.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to render compose file: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write compose file %s: %w", path, err)
	}
	return path, nil
}
